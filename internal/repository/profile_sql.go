package repository

import (
	"context"
	"database/sql"

	"github.com/eduverse/eduverse-backend/internal/model"
)

// ProfileRepo stores profile rows in the local MySQL `profiles` table
// (id CHAR(36) primary key, name, role). Used together with the local
// identity backend; the auth token argument is unused because access
// control happens in the HTTP layer, not the database.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

func (r *ProfileRepo) GetByID(ctx context.Context, _ string, id string) (model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, role FROM profiles WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.Role)
	if err == sql.ErrNoRows {
		return model.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// Insert writes the row unless the id already exists. INSERT IGNORE plus
// the primary key on id makes concurrent first inserts for one user safe.
func (r *ProfileRepo) Insert(ctx context.Context, _ string, p model.Profile) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO profiles (id, name, role) VALUES (?,?,?)",
		p.ID, p.Name, string(p.Role))
	return err
}

func (r *ProfileRepo) Sample(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, role FROM profiles LIMIT 1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Role); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
