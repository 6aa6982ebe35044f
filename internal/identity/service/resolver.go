package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/identity/internal/identity/domain"
	"github.com/aussiebroadwan/identity/internal/identity/store"
)

// Resolver maps raw store reads onto the missing/soft-deleted distinction:
// ErrNotFound when the row is absent, ErrNotActive when it exists but has
// been soft-deleted. Superusers may opt into seeing soft-deleted rows with
// includeDeleted; everyone else gets the gate.
type Resolver struct {
	Store store.Store
}

func (r *Resolver) Profile(ctx context.Context, id string, includeDeleted bool) (domain.Profile, error) {
	p, err := r.Store.Profiles().GetProfileByID(ctx, id)
	return resolveProfileIncludeDeleted(p, err, includeDeleted)
}

func (r *Resolver) ProfileByEmail(ctx context.Context, email string, includeDeleted bool) (domain.Profile, error) {
	p, err := r.Store.Profiles().GetProfileByEmail(ctx, email)
	return resolveProfileIncludeDeleted(p, err, includeDeleted)
}

func (r *Resolver) Platform(ctx context.Context, id string) (domain.Platform, error) {
	return resolvePlatform(r.Store.Platforms().GetPlatformByID(ctx, id))
}

func (r *Resolver) Role(ctx context.Context, id string) (domain.Role, error) {
	role, err := r.Store.Roles().GetRoleByID(ctx, id)
	if err != nil {
		return domain.Role{}, mapStoreErr(err)
	}
	if !role.Active() {
		return domain.Role{}, ErrNotActive
	}
	return role, nil
}

// Package-level helpers so transactional flows can resolve through a Tx
// without building a second Resolver.

func activeProfile(ctx context.Context, st store.Store, id string) (domain.Profile, error) {
	return resolveProfile(st.Profiles().GetProfileByID(ctx, id))
}

func activeProfileByEmail(ctx context.Context, st store.Store, email string) (domain.Profile, error) {
	return resolveProfile(st.Profiles().GetProfileByEmail(ctx, email))
}

func activePlatform(ctx context.Context, st store.Store, id string) (domain.Platform, error) {
	return resolvePlatform(st.Platforms().GetPlatformByID(ctx, id))
}

func resolveProfile(p domain.Profile, err error) (domain.Profile, error) {
	if err != nil {
		return domain.Profile{}, mapStoreErr(err)
	}
	if !p.Active() {
		return domain.Profile{}, ErrNotActive
	}
	return p, nil
}

// resolveProfile with the superuser escape hatch.
func resolveProfileIncludeDeleted(p domain.Profile, err error, includeDeleted bool) (domain.Profile, error) {
	if err != nil {
		return domain.Profile{}, mapStoreErr(err)
	}
	if !p.Active() && !includeDeleted {
		return domain.Profile{}, ErrNotActive
	}
	return p, nil
}

func resolvePlatform(p domain.Platform, err error) (domain.Platform, error) {
	if err != nil {
		return domain.Platform{}, mapStoreErr(err)
	}
	if !p.Active() {
		return domain.Platform{}, ErrNotActive
	}
	return p, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
