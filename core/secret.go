package core

// redacted replaces the wrapped value on every output path.
const redacted = "[REDACTED]"

// Secret holds a sensitive string, typically an auth token, and redacts
// it on every printing and marshaling path. fmt verbs, JSON, and text
// encoders all see "[REDACTED]"; only Expose returns the wrapped value.
//
//	secret := NewSecret("eyJhbGciOi...")
//	fmt.Println(secret)        // [REDACTED]
//	fmt.Printf("%#v", secret)  // core.Secret{[REDACTED]}
//	secret.Expose()            // eyJhbGciOi...
//
// The zero value is an empty secret.
type Secret struct {
	value string
}

// NewSecret wraps value in a Secret.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Expose returns the wrapped value, for copying into the auth_token
// field of an outgoing request. Callers own keeping the result out of
// logs and serialized output.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty reports whether the secret holds no value.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return redacted
}

// GoString implements fmt.GoStringer, covering the %#v verb.
func (s Secret) GoString() string {
	return "core.Secret{" + redacted + "}"
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// MarshalText implements encoding.TextMarshaler, covering YAML and
// similar text encoders.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
