package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/user-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const usersTable = "users"

// ErrUnknownSortField is returned by FindAll when SortBy names no user field.
var ErrUnknownSortField = errors.New("unknown sort field")

var userColumns = []string{"id", "name", "email", "age", "created_at", "updated_at"}

// sortColumns maps the JSON field names accepted by sortBy to columns.
var sortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"age":       "age",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// UserRepository persists users in the users table.
type UserRepository struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	obs *queryObserver
	now func() time.Time
}

// NewUserRepository builds a repository over db. It works with both the pgx
// and the sqlite3 drivers.
func NewUserRepository(db *sqlx.DB, logger *zerolog.Logger, slowQueryThreshold time.Duration) *UserRepository {
	return &UserRepository{
		db:  db,
		sb:  statementBuilder(db),
		obs: newQueryObserver(db.DriverName(), logger, slowQueryThreshold),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Create inserts a user from fields, storing NULL for anything not provided,
// and returns the stored row.
func (r *UserRepository) Create(ctx context.Context, fields model.UserFields) (_ *model.User, err error) {
	ctx, finish := r.obs.observe(ctx, "create")
	defer func() { finish(err) }()

	now := r.now()
	query, args, err := r.sb.Insert(usersTable).
		Columns("name", "email", "age", "created_at", "updated_at").
		Values(fields.Name.Value, fields.Email.Value, fields.Age.Value, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build insert user")
	}

	var user *model.User
	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		var id int64
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return errors.Wrap(err, "insert user")
		}

		created, err := r.findByID(ctx, tx, id)
		user = created
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindAll returns every user, optionally filtered by a case-insensitive
// name substring and sorted ascending by a field with NULLs first on every
// dialect. Ties and the unsorted case are ordered by id. The result is never
// nil.
func (r *UserRepository) FindAll(ctx context.Context, opts model.ListOptions) (_ []model.User, err error) {
	ctx, finish := r.obs.observe(ctx, "find_all")
	defer func() { finish(err) }()

	builder := r.sb.Select(userColumns...).From(usersTable)

	if opts.Search != "" {
		pattern := "%" + likeEscaper.Replace(opts.Search) + "%"
		builder = builder.Where(sq.Expr(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern))
	}

	if opts.SortBy != "" {
		column, ok := sortColumns[opts.SortBy]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownSortField, "sortBy %q", opts.SortBy)
		}
		if column != "id" {
			builder = builder.OrderBy(column + " ASC NULLS FIRST")
		}
	}
	builder = builder.OrderBy("id ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select users")
	}

	users := []model.User{}
	if err := sqlx.SelectContext(ctx, r.db, &users, query, args...); err != nil {
		return nil, errors.Wrap(err, "select users")
	}
	return users, nil
}

// FindByID returns the user with id, or nil when there is none.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (_ *model.User, err error) {
	ctx, finish := r.obs.observe(ctx, "find_by_id")
	defer func() { finish(err) }()

	return r.findByID(ctx, r.db, id)
}

func (r *UserRepository) findByID(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.User, error) {
	query, args, err := r.sb.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select user")
	}

	var user model.User
	if err := sqlx.GetContext(ctx, q, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "select user %d", id)
	}
	return &user, nil
}

// Update replaces the provided fields of user id and refreshes updated_at.
// An explicit null clears its column. It returns nil when the user does not
// exist. With no fields provided the row is returned unchanged.
func (r *UserRepository) Update(ctx context.Context, id int64, fields model.UserFields) (_ *model.User, err error) {
	ctx, finish := r.obs.observe(ctx, "update")
	defer func() { finish(err) }()

	if fields.IsEmpty() {
		return r.findByID(ctx, r.db, id)
	}

	query, args, err := r.sb.Update(usersTable).
		SetMap(fields.Columns()).
		Set("updated_at", r.now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build update user")
	}

	var user *model.User
	err = r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return errors.Wrapf(err, "update user %d", id)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "rows affected")
		}
		if affected == 0 {
			return nil
		}

		updated, err := r.findByID(ctx, tx, id)
		user = updated
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes user id and reports whether a row was deleted.
func (r *UserRepository) Delete(ctx context.Context, id int64) (_ bool, err error) {
	ctx, finish := r.obs.observe(ctx, "delete")
	defer func() { finish(err) }()

	query, args, err := r.sb.Delete(usersTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, errors.Wrap(err, "build delete user")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrapf(err, "delete user %d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	return affected > 0, nil
}

func (r *UserRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}
