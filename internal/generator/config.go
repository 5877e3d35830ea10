package generator

// Config drives the synthetic source-payload generator.
type Config struct {
	NumCards    int
	NumPolicies int
	NumLoans    int
	Seed        int64
}

// DefaultConfig returns baseline settings producing a small but varied
// catalog for local development.
func DefaultConfig() Config {
	return Config{
		NumCards:    40,
		NumPolicies: 30,
		NumLoans:    40,
		Seed:        42,
	}
}
