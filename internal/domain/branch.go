package domain

// Branch is a service yard that delivers equipment. Location is nil until
// the address has been geocoded.
type Branch struct {
	ID       string
	Name     string
	Address  string
	Location *Coordinates
}
