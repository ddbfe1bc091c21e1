// Package storage declares the persistence contracts of the web service.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/fonts/query"
)

// ErrDuplicate reports an upload whose bytes already exist in the catalog.
var ErrDuplicate = errors.New("font already in catalog")

// FontCatalog is the source of truth for font records and binaries.
type FontCatalog interface {
	ListFonts(ctx context.Context, q query.Query) ([]fonts.Font, error)
	GetFont(ctx context.Context, fontID string) (fonts.Font, bool, error)
	FontData(ctx context.Context, fontID string) (fonts.Font, []byte, bool, error)
	PutFont(ctx context.Context, font fonts.Font, data []byte) (fonts.Font, error)
	DeleteFont(ctx context.Context, fontID string, uploadedBy string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// FontListCache holds a derived copy of the full font list. Entries can be
// discarded at any time and rebuilt from the catalog.
type FontListCache interface {
	GetFontList(ctx context.Context) ([]fonts.Font, bool, error)
	PutFontList(ctx context.Context, list []fonts.Font) error
	InvalidateFontList(ctx context.Context) error
}

// SessionRevocations tracks session ids signed out before their token expiry.
type SessionRevocations interface {
	RevokeSession(ctx context.Context, sessionID string, remaining time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}
