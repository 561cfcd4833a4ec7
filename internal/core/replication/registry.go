package replication

// User is the registry's record of a connected user. The registry owns
// it; other components refer to the user only by key.
type User struct {
	Key           UserKey
	Address       string
	Authenticated bool
}

// ConnectionRegistry tracks connected users and their authentication
// outcome. Removal is idempotent because cleanup may be triggered from
// more than one event source.
type ConnectionRegistry struct {
	users map[UserKey]*User
	auth  Authenticator
}

// NewConnectionRegistry creates a registry gated by the given
// authenticator.
func NewConnectionRegistry(auth Authenticator) *ConnectionRegistry {
	return &ConnectionRegistry{
		users: make(map[UserKey]*User),
		auth:  auth,
	}
}

// Accept records a new, not yet authenticated user for a transport
// connection and returns its key.
func (r *ConnectionRegistry) Accept(address string) UserKey {
	key := GenerateUserKey()
	r.users[key] = &User{Key: key, Address: address}
	return key
}

// Authenticate validates the credential for a pending user. On success
// the user is marked authenticated; on failure the record is removed so
// no half-initialized user survives the gate.
func (r *ConnectionRegistry) Authenticate(key UserKey, cred Credential) bool {
	u, ok := r.users[key]
	if !ok {
		return false
	}
	if !r.auth.Authenticate(cred) {
		delete(r.users, key)
		return false
	}
	u.Authenticated = true
	return true
}

// Get returns the user record for a key.
func (r *ConnectionRegistry) Get(key UserKey) (*User, bool) {
	u, ok := r.users[key]
	return u, ok
}

// Remove forgets a user. Removing an absent key is a no-op.
func (r *ConnectionRegistry) Remove(key UserKey) {
	delete(r.users, key)
}

// Count reports the number of registered users, authenticated or not.
func (r *ConnectionRegistry) Count() int {
	return len(r.users)
}

// Range calls fn for every registered user until fn returns false.
func (r *ConnectionRegistry) Range(fn func(*User) bool) {
	for _, u := range r.users {
		if !fn(u) {
			return
		}
	}
}
