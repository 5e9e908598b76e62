package domain

import "context"

// PushMessage is one logical notification before fan-out resolves it onto
// device tokens.
type PushMessage struct {
	Title string
	Body  string
	Icon  string
	Link  string
	Data  map[string]string
}

// PushSender delivers one multicast payload to a set of device tokens and
// reports how many were accepted. Transport-level partial failure (stale
// tokens rejected, etc.) is not an error; implementations log and move on.
type PushSender interface {
	SendMulticast(ctx context.Context, tokens []string, msg PushMessage) (accepted int, err error)
}

type EmailSender interface {
	Send(to, subject, body string) error
}

// AccountDeleter removes an authentication credential. The inactive-account
// sweep pairs it with UserRepository.Delete.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, uid string) error
}

// SearchIndex is the hosted search index, a best-effort secondary view.
// Upsert is a partial update that creates the record when absent; it never
// destructively replaces index-side fields this service does not own.
type SearchIndex interface {
	Upsert(ctx context.Context, listing *Listing) error
	Remove(ctx context.Context, listingID string) error
}

type ListingCache interface {
	Invalidate(ctx context.Context, listingID string) error
}

// ObjectStore is the media object store. Objects are addressed by key under a
// bucket fixed at construction time.
type ObjectStore interface {
	Download(ctx context.Context, key, destPath string) error
	Upload(ctx context.Context, key, srcPath, contentType string, metadata map[string]string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, key string) error
	RemovePrefix(ctx context.Context, prefix string) error
	// KeyForURL maps a public object URL back to its key, reporting whether
	// the URL belongs to this store at all.
	KeyForURL(url string) (string, bool)
}

// ImageResizer produces one derivative scaled to fit an edge×edge bounding
// box, preserving aspect ratio and never upscaling past the original.
type ImageResizer interface {
	Fit(srcPath, destPath string, edge int) error
}
