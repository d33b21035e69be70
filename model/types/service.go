package types

// Service is a named group of side-effecting methods, for example an email
// relay or a social platform client.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
