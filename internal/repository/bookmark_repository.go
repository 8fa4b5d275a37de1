package repository

import (
    "context"

    "github.com/iliyamo/picklepass/internal/kvstore"
    "github.com/iliyamo/picklepass/internal/logger"
)

// BookmarksKey is the store key of the bookmarked facility slugs.
const BookmarksKey = "picklepass_bookmarked_facilities_v1"

// BookmarkRepo persists a profile's bookmarked facility slugs, most recent
// first.
type BookmarkRepo struct {
    store   kvstore.Store
    locks   *keyedMutex
    lockKey string
}

// NewBookmarkRepo returns a bookmark repository over store.
func NewBookmarkRepo(store kvstore.Store) *BookmarkRepo {
    if store == nil {
        panic("nil store passed to NewBookmarkRepo")
    }
    return &BookmarkRepo{store: store, locks: &keyedMutex{}}
}

// ForProfile returns the bookmarks of one browser profile.
func (r *BookmarkRepo) ForProfile(profileID string) *BookmarkRepo {
    ns := kvstore.ProfileNamespace(profileID)
    return &BookmarkRepo{store: kvstore.Namespace(r.store, ns), locks: r.locks, lockKey: ns}
}

// List returns the bookmarked slugs.  Like the booking ledger it fails soft.
func (r *BookmarkRepo) List(ctx context.Context) []string {
    items, _, err := readList[string](ctx, r.store, BookmarksKey)
    if err != nil {
        logger.Warn("BookmarkRepo:List:StoreReadError", "error", err)
        return []string{}
    }
    return items
}

// IsBookmarked reports whether slug is in the list.
func (r *BookmarkRepo) IsBookmarked(ctx context.Context, slug string) bool {
    for _, s := range r.List(ctx) {
        if s == slug {
            return true
        }
    }
    return false
}

// Toggle removes slug when present and prepends it otherwise.  It returns
// the new list and whether slug is now bookmarked.
func (r *BookmarkRepo) Toggle(ctx context.Context, slug string) (items []string, bookmarked bool, err error) {
    unlock := r.locks.lock(r.lockKey)
    defer unlock()

    items, err = mutateList(ctx, r.store, BookmarksKey, func(cur []string) ([]string, error) {
        next := make([]string, 0, len(cur)+1)
        found := false
        for _, s := range cur {
            if s == slug {
                found = true
                continue
            }
            next = append(next, s)
        }
        bookmarked = !found
        if bookmarked {
            next = append([]string{slug}, next...)
        }
        return next, nil
    })
    if err != nil {
        return nil, false, err
    }
    logger.Debug("BookmarkRepo:Toggle:Success", "slug", slug, "bookmarked", bookmarked)
    return items, bookmarked, nil
}
