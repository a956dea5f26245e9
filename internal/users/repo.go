package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is the read-only display record joined into listings.
type Profile struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
}

// DisplayName is the name shown next to a profile: the full name when
// present, otherwise the email local-part before '@'.
func (p Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	for i := 0; i < len(p.Email); i++ {
		if p.Email[i] == '@' {
			return p.Email[:i]
		}
	}
	return p.Email
}

// Repo reads and upserts user profiles.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Ensure mirrors the identity provider's view of a user into the profiles
// table on every authenticated request, keeping existing values when the
// token carries none.
func (r *Repo) Ensure(ctx context.Context, id, email string, fullName *string) error {
	if id == "" {
		return fmt.Errorf("user id required")
	}

	name := ""
	if fullName != nil {
		name = *fullName
	}

	const q = `
insert into profiles (id, email, full_name, updated_at)
values ($1, nullif($2,''), nullif($3,''), now())
on conflict (id) do update
set
  email = coalesce(excluded.email, profiles.email),
  full_name = coalesce(excluded.full_name, profiles.full_name),
  updated_at = now();
`
	_, err := r.db.Exec(ctx, q, id, email, name)
	return err
}

// GetByIDs resolves a set of profiles in one batched lookup. Missing ids are
// simply absent from the result map.
func (r *Repo) GetByIDs(ctx context.Context, ids []string) (map[string]Profile, error) {
	if len(ids) == 0 {
		return map[string]Profile{}, nil
	}

	const q = `
select id, coalesce(email, ''), full_name
from profiles
where id = any($1);
`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Profile, len(ids))
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
