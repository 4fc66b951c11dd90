package utils

import (
	"encoding/binary"
	"fmt"

	"github.com/speps/go-hashids/v2"
	"golang.org/x/crypto/blake2b"
)

const displaySalt = "finternet-display"

var displayHash *hashids.HashID

func init() {
	hd := hashids.NewData()
	hd.Salt = displaySalt
	hd.MinLength = 8

	var err error
	displayHash, err = hashids.NewWithData(hd)
	if err != nil {
		panic(err)
	}
}

// DisplayIdentity derives a stable pseudonym for a token subject, used only
// to decorate responses and log lines. It is NOT an identity: ownership is
// always decided on the raw subject.
func DisplayIdentity(subject string) (name string, email string) {
	sum := blake2b.Sum256([]byte(subject))
	n := int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))

	pseudonym, err := displayHash.EncodeInt64([]int64{n})
	if err != nil {
		pseudonym = "unknown"
	}

	return fmt.Sprintf("User %s", pseudonym), fmt.Sprintf("user%s@example.com", pseudonym)
}
