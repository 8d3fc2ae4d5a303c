package token

// Storage key names. These match the names the backend contract documents for
// client-side persistence, so credentials survive process restarts under
// predictable keys.
const (
	AccessKey  = "access_token"
	RefreshKey = "refresh_token"
)

// Pair is the credential pair issued by login, registration, and refresh.
// Access is the short-lived bearer credential; Refresh is longer-lived and
// used solely to mint new access tokens.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Empty reports whether neither credential is set.
func (p Pair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// Store persists the credential pair. Implementations provide last-writer-wins
// semantics over a single mutable cell; there is no versioning.
//
// SetPair and Clear must be atomic from the reader's perspective: a reader
// never observes an access token without its companion refresh token.
type Store interface {
	Pair() (Pair, error)
	SetPair(pair Pair) error
	Clear() error
}
