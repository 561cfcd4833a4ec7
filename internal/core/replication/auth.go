package replication

// Credential is the ephemeral payload a client presents once at connect
// time. It is validated and discarded; only the boolean outcome is kept.
type Credential struct {
	Username string
	Password string
}

// Authenticator decides whether a credential admits a connection. It is
// supplied at server construction.
type Authenticator interface {
	Authenticate(cred Credential) bool
}

// StaticAuthenticator accepts exactly one username/password pair.
type StaticAuthenticator struct {
	Username string
	Password string
}

func (a StaticAuthenticator) Authenticate(cred Credential) bool {
	return cred.Username == a.Username && cred.Password == a.Password
}
