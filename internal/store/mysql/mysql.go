// Package mysql stores cards in a MySQL table.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/model"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/store"
)

// columns maps table columns to card field keys. The order is the order of the upsert
// arguments.
var columns = []struct {
	column string
	key    string
}{
	{"user_id", model.KeyUserID},
	{"name", model.KeyName},
	{"title", model.KeyTitle},
	{"company", model.KeyCompany},
	{"email", model.KeyEmail},
	{"phone", model.KeyPhone},
	{"phone_work", model.KeyPhoneWork},
	{"website", model.KeyWebsite},
	{"company_website", model.KeyCompanyWebsite},
	{"address", model.KeyAddress},
	{"photo", model.KeyPhoto},
	{"linkedin", model.KeyLinkedIn},
	{"github", model.KeyGitHub},
	{"facebook", model.KeyFacebook},
	{"instagram", model.KeyInstagram},
	{"created_at", model.KeyCreatedAt},
}

// Store is a store.Store on top of a MySQL database.
type Store struct {
	db *sqlx.DB

	// upsert is a prepared statement for creating or replacing a card.
	upsert *sqlx.Stmt

	// selectWhereId is a prepared statement for selecting the card with a given id.
	selectWhereId *sqlx.Stmt

	// selectWhereOwner is a prepared statement for selecting the cards of an owner.
	selectWhereOwner *sqlx.Stmt

	// deleteWhereId is a prepared statement for deleting the card with a given id.
	deleteWhereId *sqlx.Stmt
}

var _ store.Store = (*Store)(nil)

// CreateDatabase opens a database connection to the given MySQL server and schema.
func CreateDatabase(user, password, host, name string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", user, password, host, name)
	return sql.Open("mysql", dsn)
}

// CreateDatabaseFromEnv opens a database connection using DBUSER, DBPWD, DBHOST and DBNAME.
func CreateDatabaseFromEnv() (*sql.DB, error) {
	name := os.Getenv("DBNAME")
	if name == "" {
		name = "test"
	}
	return CreateDatabase(os.Getenv("DBUSER"), os.Getenv("DBPWD"), os.Getenv("DBHOST"), name)
}

// NewStore wraps the sql database and prepares all statements. The database argument can be
// a real database for production use or a mock database within unit tests.
func NewStore(sqlDB *sql.DB) (*Store, error) {
	db := sqlx.NewDb(sqlDB, "mysql")
	s := &Store{db: db}

	// Prepared statements offer a significant speed increase if executed many times.
	var err error
	s.upsert, err = db.Preparex(upsertStatement())
	if err != nil {
		return nil, fmt.Errorf("could not prepare upsert: %w", err)
	}
	s.selectWhereId, err = db.Preparex(`
		SELECT * FROM cards WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("could not prepare select by id: %w", err)
	}
	s.selectWhereOwner, err = db.Preparex(`
		SELECT * FROM cards WHERE user_id = ? ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("could not prepare select by owner: %w", err)
	}
	s.deleteWhereId, err = db.Preparex(`
		DELETE FROM cards WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("could not prepare delete: %w", err)
	}
	return s, nil
}

// upsertStatement builds the INSERT ... ON DUPLICATE KEY UPDATE statement over all columns.
// created_at is kept from the first insert.
func upsertStatement() string {
	names := "id"
	values := "?"
	updates := ""
	for _, c := range columns {
		names += ", " + c.column
		values += ", ?"
		if c.column == "created_at" {
			continue
		}
		if updates != "" {
			updates += ", "
		}
		updates += c.column + " = VALUES(" + c.column + ")"
	}
	return "INSERT INTO cards (" + names + ") VALUES (" + values + ") ON DUPLICATE KEY UPDATE " + updates
}

// Close closes the prepared statements and the database.
func (s *Store) Close() error {
	for _, stmt := range []*sqlx.Stmt{s.upsert, s.selectWhereId, s.selectWhereOwner, s.deleteWhereId} {
		stmt.Close()
	}
	return s.db.Close()
}

// NewID returns a random UUID.
func (s *Store) NewID() string {
	return uuid.NewString()
}

// Get returns the card with the given id.
func (s *Store) Get(ctx context.Context, id string) (model.Card, error) {
	rows, err := s.selectWhereId.QueryxContext(ctx, id)
	if err != nil {
		return model.Card{}, fmt.Errorf("could not select card %s: %w", id, err)
	}
	cards, err := scanCards(rows)
	if err != nil {
		return model.Card{}, fmt.Errorf("could not read card %s: %w", id, err)
	}
	if len(cards) == 0 {
		return model.Card{}, store.ErrNotFound
	}
	return cards[0], nil
}

// Put creates or replaces the card.
func (s *Store) Put(ctx context.Context, card model.Card) error {
	fields := card.Fields()
	args := []any{card.ID}
	for _, c := range columns {
		args = append(args, fields[c.key])
	}
	if _, err := s.upsert.ExecContext(ctx, args...); err != nil {
		return fmt.Errorf("could not store card %s: %w", card.ID, err)
	}
	return nil
}

// Delete removes the card with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.deleteWhereId.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("could not delete card %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not delete card %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// QueryByOwner returns the cards created by the given user.
func (s *Store) QueryByOwner(ctx context.Context, ownerID string) ([]model.Card, error) {
	rows, err := s.selectWhereOwner.QueryxContext(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("could not select cards of %s: %w", ownerID, err)
	}
	cards, err := scanCards(rows)
	if err != nil {
		return nil, fmt.Errorf("could not read cards of %s: %w", ownerID, err)
	}
	return cards, nil
}

// scanCards reads all rows into cards. Nullable columns become empty strings.
func scanCards(rows *sqlx.Rows) ([]model.Card, error) {
	defer rows.Close()
	keys := make(map[string]string, len(columns))
	for _, c := range columns {
		keys[c.column] = c.key
	}
	var cards []model.Card
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		fields := make(map[string]any, len(row))
		for column, value := range row {
			if key, ok := keys[column]; ok {
				fields[key] = value
			}
		}
		cards = append(cards, model.FromFields(idOf(row["id"]), fields))
	}
	return cards, rows.Err()
}

// idOf converts the id column, which the driver may deliver as bytes.
func idOf(v any) string {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
