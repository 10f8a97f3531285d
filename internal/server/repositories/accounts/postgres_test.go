package accounts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQ = `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+created_at,\s*updated_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQ).
		WithArgs("id-1", "ana@team.io", []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	got, err := repo.Create(context.Background(), &models.Account{ID: "id-1", Email: "ana@team.io", PasswordHash: []byte("hash")})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "id-1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected account: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Account{ID: "id-1", Email: "ana@team.io"})
	if !errors.Is(err, common.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Account{ID: "id-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*disabled,\s*created_at,\s*updated_at\s+FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1\s*$`
	now := time.Now()

	mock.ExpectQuery(q).WithArgs("ana@team.io").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "disabled", "created_at", "updated_at"}).
			AddRow("id-1", "ana@team.io", []byte("h"), true, now, now))
	mock.ExpectQuery(q).WithArgs("ghost@team.io").WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "ana@team.io")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "id-1" || !got.Disabled {
		t.Fatalf("unexpected account: %+v", got)
	}

	_, err = repo.GetByEmail(context.Background(), "ghost@team.io")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+accounts\s+SET\s+email\s*=\s*\$2`
	mock.ExpectExec(q).WithArgs("id-1", "new@team.io").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("id-2", "new@team.io").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("id-3", "taken@team.io").WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.UpdateEmail(context.Background(), "id-1", "new@team.io"); err != nil {
		t.Fatalf("UpdateEmail error: %v", err)
	}
	if err := repo.UpdateEmail(context.Background(), "id-2", "new@team.io"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
	if err := repo.UpdateEmail(context.Background(), "id-3", "taken@team.io"); !errors.Is(err, common.ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+accounts\s+SET\s+password_hash\s*=\s*\$2`).
		WithArgs("id-1", []byte("h2")).WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePasswordHash(context.Background(), "id-1", []byte("h2")); err != nil {
		t.Fatalf("UpdatePasswordHash error: %v", err)
	}
}
