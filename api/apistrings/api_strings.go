package apistrings

const (
	/// Auth Related Strings
	Unauthorized = "unauthorized request"

	/// Core Functionality Error
	ServerError = "a server error occurred, please try again later"

	/// Activity Related Strings
	InvalidPagination = "limit must be between 1 and 200 and offset cannot be negative"

	/// Ledger Related Strings
	InvalidTransactionInput = "check 'asset_id' or 'type_' keys, invalid request"
	TransactionNotFound     = "transaction not found"

	/// Payment Related Strings
	InvalidPaymentInput = "check 'amount', 'currency' or 'payment_type' keys, invalid request"
	InvalidPaymentType  = "Invalid payment type. Must be 'fiat_to_crypto' or 'crypto_to_fiat'"
	PaymentNotFound     = "payment not found"
	RatesUnavailable    = "exchange rates are unavailable right now"

	/// Idempotency Related Strings
	IdempotencyUnavailable = "could not verify idempotency key, please retry"
	IdempotencyInProgress  = "a request with this idempotency key is still in progress"
)
