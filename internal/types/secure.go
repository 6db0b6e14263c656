package types

// redactedPlaceholder replaces secret values in logs and serialization.
const redactedPlaceholder = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString is a string type that cannot be logged or serialized by
// accident. String() and MarshalJSON() return a redacted placeholder, so
// secrets never leak through fmt functions, structured log fields, or
// JSON-encoded config dumps.
//
// Call Unmask() at the point where the raw value is genuinely needed,
// such as building an Authorization header or a DSN.
type SecretString string

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value of the secret.
func (s SecretString) Unmask() string {
	return string(s)
}

// IsZero reports whether the secret is empty. Used for precondition checks
// (a sync run with no API key must fail before any network activity).
func (s SecretString) IsZero() bool {
	return s == ""
}
