package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// Prefs is the local preference store: the view mode chosen per calendar
// scope and the notifications the user dismissed.
type Prefs interface {
	ViewMode(scope string) (string, bool)
	SetViewMode(scope, mode string) error
	Dismissed(id string) (time.Time, bool)
	Dismiss(id string, at time.Time) error
	PruneDismissed(before time.Time) (int, error)
	Watch(ctx context.Context) (<-chan Event, error)
}

const (
	bucketViewMode  = "viewmode"
	bucketDismissed = "dismissed"
)

// Load opens the diskv backed Prefs under cfg's base path. A nil cfg reads the
// configuration first.
func Load(cfg Config) (Prefs, error) {
	if cfg == nil {
		settings, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = settings
	}

	basePath := cfg.BasePath()
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &prefs{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      64 * 1024,
	}), basePath: basePath}, nil
}

type prefs struct {
	d        *diskv.Diskv
	basePath string
}

type viewModeRecord struct {
	Scope   string    `json:"scope"`
	Mode    string    `json:"mode"`
	Updated time.Time `json:"updated"`
}

type dismissedRecord struct {
	ID          string    `json:"id"`
	DismissedAt time.Time `json:"dismissedAt"`
}

func (p *prefs) ViewMode(scope string) (string, bool) {
	var rec viewModeRecord
	if err := p.read(toKey(bucketViewMode, scopeOrDefault(scope)), &rec); err != nil {
		return "", false
	}
	return rec.Mode, rec.Mode != ""
}

func (p *prefs) SetViewMode(scope, mode string) error {
	scope = scopeOrDefault(scope)
	return p.write(toKey(bucketViewMode, scope), viewModeRecord{
		Scope:   scope,
		Mode:    mode,
		Updated: time.Now().UTC(),
	})
}

func (p *prefs) Dismissed(id string) (time.Time, bool) {
	var rec dismissedRecord
	if err := p.read(toKey(bucketDismissed, id), &rec); err != nil {
		return time.Time{}, false
	}
	return rec.DismissedAt, !rec.DismissedAt.IsZero()
}

func (p *prefs) Dismiss(id string, at time.Time) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("store: notification id required")
	}
	return p.write(toKey(bucketDismissed, id), dismissedRecord{ID: id, DismissedAt: at.UTC()})
}

// PruneDismissed erases dismissals recorded before the cutoff.
func (p *prefs) PruneDismissed(before time.Time) (int, error) {
	var stale []string
	for key := range p.d.KeysPrefix(bucketDismissed+"-", nil) {
		var rec dismissedRecord
		if err := p.read(key, &rec); err != nil {
			stale = append(stale, key)
			continue
		}
		if rec.DismissedAt.Before(before) {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		if err := p.d.Erase(key); err != nil {
			return 0, fmt.Errorf("store: erase %s: %w", key, err)
		}
	}
	return len(stale), nil
}

func (p *prefs) read(key string, v any) error {
	data, err := p.d.Read(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (p *prefs) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := p.d.Write(key, data); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// keyToPathTransform maps `bucket-encodedName` to bucket/encodedName.
func keyToPathTransform(s string) *diskv.PathKey {
	bucket, name, found := strings.Cut(s, "-")
	if !found {
		return &diskv.PathKey{FileName: s}
	}
	return &diskv.PathKey{
		Path:     []string{bucket},
		FileName: name,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// DefaultScope names the preferences of the personal calendar.
const DefaultScope = "personal"

func scopeOrDefault(scope string) string {
	if strings.TrimSpace(scope) == "" {
		return DefaultScope
	}
	return scope
}

// toKey makes `bucket-base64(name)`.
func toKey(bucket, name string) string {
	return fmt.Sprintf("%s-%s", bucket, encodeName(name))
}

func encodeName(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func decodeName(s string) string {
	name, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(name)
}
