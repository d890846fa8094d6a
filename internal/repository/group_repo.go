package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-user-admin/internal/model"
	"go-user-admin/pkg/apierror"
)

type GroupRepository interface {
	FindByID(ctx context.Context, id int64) (model.Group, error)
	FindByName(ctx context.Context, name string) (model.Group, error)
	List(ctx context.Context) ([]model.Group, error)
	Create(ctx context.Context, g model.Group) (model.Group, error)
	UpdateName(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID int64, userID int64) error
	RemoveMember(ctx context.Context, groupID int64, userID int64) error
	Members(ctx context.Context, groupID int64) ([]model.User, error)
}

type PostgresGroupRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresGroupRepository(pool *pgxpool.Pool) *PostgresGroupRepository {
	return &PostgresGroupRepository{pool: pool}
}

func scanGroup(row pgx.Row) (model.Group, error) {
	var g model.Group
	err := row.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r *PostgresGroupRepository) FindByID(ctx context.Context, id int64) (model.Group, error) {
	g, err := scanGroup(r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM groups WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Group{}, apierror.NotFound("group not found", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return model.Group{}, fmt.Errorf("find group by id: %w", err)
	}
	return g, nil
}

func (r *PostgresGroupRepository) FindByName(ctx context.Context, name string) (model.Group, error) {
	g, err := scanGroup(r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM groups WHERE name = $1`, name))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Group{}, apierror.NotFound("group not found", name)
	}
	if err != nil {
		return model.Group{}, fmt.Errorf("find group by name: %w", err)
	}
	return g, nil
}

func (r *PostgresGroupRepository) List(ctx context.Context) ([]model.Group, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}

func (r *PostgresGroupRepository) Create(ctx context.Context, g model.Group) (model.Group, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO groups (name, created_at, updated_at)
		 VALUES ($1, $2, $2)
		 RETURNING id, created_at, updated_at`,
		g.Name, now).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)

	if isUniqueViolation(err) {
		return model.Group{}, apierror.Conflict("group already exists", g.Name)
	}
	if err != nil {
		return model.Group{}, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

func (r *PostgresGroupRepository) UpdateName(ctx context.Context, id int64, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE groups SET name = $2, updated_at = $3 WHERE id = $1`,
		id, name, time.Now().UTC())

	if isUniqueViolation(err) {
		return apierror.Conflict("group already exists", name)
	}
	if err != nil {
		return fmt.Errorf("update group name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("group not found", fmt.Sprintf("%d", id))
	}
	return nil
}

func (r *PostgresGroupRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("group not found", fmt.Sprintf("%d", id))
	}
	return nil
}

func (r *PostgresGroupRepository) AddMember(ctx context.Context, groupID int64, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		userID, groupID)
	if err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

func (r *PostgresGroupRepository) RemoveMember(ctx context.Context, groupID int64, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_groups WHERE user_id = $1 AND group_id = $2`,
		userID, groupID)
	if err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	return nil
}

func (r *PostgresGroupRepository) Members(ctx context.Context, groupID int64) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.username, u.password_hash, u.is_admin, u.created_at, u.updated_at
		 FROM users u
		 JOIN user_groups ug ON ug.user_id = u.id
		 WHERE ug.group_id = $1
		 ORDER BY u.id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}

	return users, nil
}
