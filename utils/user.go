package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// ActiveUserKey is where the auth middleware leaves the Caller.
const ActiveUserKey = "user"

// CreatedRecordKey holds the id of the record a handler just created.
const CreatedRecordKey = "entity_id"

func GetActiveUser(ctx *gin.Context) (Caller, error) {
	value, exists := ctx.Get(ActiveUserKey)
	if !exists {
		return Caller{}, fmt.Errorf("error occurred, not authorized to access this resource")
	}

	user, ok := value.(Caller)
	if !ok || user.ID == "" {
		return Caller{}, fmt.Errorf("an error occurred")
	}

	return user, nil
}
