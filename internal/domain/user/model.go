package user

// Principal is the authenticated caller as the account service reports it.
type Principal struct {
	UserID string
	Email  string
}
