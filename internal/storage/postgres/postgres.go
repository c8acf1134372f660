package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/princekumarofficial/marketplace-service/internal/config"
	"github.com/princekumarofficial/marketplace-service/internal/storage"
	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
)

const (
	// invalid_text_representation, raised for ids that are not integers or uuids.
	codeInvalidText     = "22P02"
	codeUniqueViolation = "23505"
)

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	log.Println("Connected to Postgres database")

	pg := New(db)
	if err := pg.CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

// New wraps an open database handle.
func New(db *sql.DB) *Postgres {
	return &Postgres{Db: db}
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			role VARCHAR(10) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'ngo')),
			profile_photo_url TEXT NOT NULL DEFAULT '',
			donation_count INTEGER NOT NULL DEFAULT 0,
			total_donated NUMERIC(14,2) NOT NULL DEFAULT 0,
			listing_count INTEGER NOT NULL DEFAULT 0,
			shared_count INTEGER NOT NULL DEFAULT 0,
			profile_completed BOOLEAN NOT NULL DEFAULT FALSE,
			badges TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS items (
			id UUID PRIMARY KEY,
			seller_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(14,2) NOT NULL DEFAULT 0,
			image_urls TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`CREATE TABLE IF NOT EXISTS item_shares (
			id SERIAL PRIMARY KEY,
			item_id UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			shared_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id UUID PRIMARY KEY,
			ngo_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			goal NUMERIC(14,2) NOT NULL,
			raised NUMERIC(14,2) NOT NULL DEFAULT 0,
			image_urls TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS donations (
			id SERIAL PRIMARY KEY,
			campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			donor_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, email, password, name string, role users.Role) (string, error) {
	if role == "" {
		role = users.RoleUser
	}

	var userID int
	query := `
	INSERT INTO users (email, password, name, role)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`

	err := p.Db.QueryRowContext(ctx, query, email, password, name, string(role)).Scan(&userID)
	if hasCode(err, codeUniqueViolation) {
		return "", storage.ErrEmailTaken
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", userID), nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (string, string, error) {
	var userID int
	var hashedPassword string
	query := `
	SELECT id, password FROM users WHERE email = $1
	`

	err := p.Db.QueryRowContext(ctx, query, email).Scan(&userID, &hashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", storage.ErrUserNotFound
	}
	if err != nil {
		return "", "", err
	}

	return fmt.Sprintf("%d", userID), hashedPassword, nil
}

func (p *Postgres) GetUser(ctx context.Context, userID string) (users.User, error) {
	query := `
	SELECT id, email, name, role, profile_photo_url,
		donation_count, total_donated, listing_count, shared_count, profile_completed, badges,
		created_at
	FROM users WHERE id = $1
	`

	var (
		u        users.User
		id       int
		role     string
		keys     []string
		created  sql.NullTime
		counters badges.Counters
	)

	err := p.Db.QueryRowContext(ctx, query, userID).Scan(
		&id, &u.Email, &u.Name, &role, &u.ProfilePhotoURL,
		&counters.DonationCount, &counters.TotalDonated, &counters.ListingCount,
		&counters.SharedCount, &counters.ProfileCompleted, pq.Array(&keys),
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
		return users.User{}, storage.ErrUserNotFound
	}
	if err != nil {
		return users.User{}, err
	}

	counters.Badges = make([]badges.BadgeKey, 0, len(keys))
	for _, k := range keys {
		counters.Badges = append(counters.Badges, badges.BadgeKey(k))
	}

	u.ID = fmt.Sprintf("%d", id)
	u.Role = users.Role(role)
	u.Counters = counters
	if created.Valid {
		u.CreatedAt = created.Time.UTC().Format(time.RFC3339)
	}

	return u, nil
}

func (p *Postgres) UpdateProfile(ctx context.Context, userID string, req users.ProfileUpdateRequest) error {
	query := `
	UPDATE users SET
		name = COALESCE($2::text, name),
		profile_photo_url = COALESCE($3::text, profile_photo_url),
		profile_completed = profile_completed
			OR (COALESCE($2::text, name) <> '' AND COALESCE($3::text, profile_photo_url) <> '')
	WHERE id = $1
	`

	res, err := p.Db.ExecContext(ctx, query, userID, nullString(req.Name), nullString(req.ProfilePhotoURL))
	if isInvalidText(err) {
		return storage.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	return expectOne(res, storage.ErrUserNotFound)
}

// AddBadges appends keys not already held. The merge runs inside the UPDATE,
// so concurrent callers cannot overwrite each other's unlocks.
func (p *Postgres) AddBadges(ctx context.Context, userID string, keys []badges.BadgeKey) error {
	if len(keys) == 0 {
		return nil
	}

	raw := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = string(k)
	}

	query := `
	UPDATE users
	SET badges = badges || ARRAY(
		SELECT k FROM unnest($2::text[]) WITH ORDINALITY AS t(k, n)
		WHERE NOT (k = ANY(badges))
		ORDER BY n
	)
	WHERE id = $1
	`

	res, err := p.Db.ExecContext(ctx, query, userID, pq.Array(raw))
	if isInvalidText(err) {
		return storage.ErrUserNotFound
	}
	if err != nil {
		return err
	}

	return expectOne(res, storage.ErrUserNotFound)
}

func (p *Postgres) ListUserIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	if afterID == "" {
		afterID = "0"
	}

	query := `
	SELECT id FROM users WHERE id > $1 ORDER BY id LIMIT $2
	`

	rows, err := p.Db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, fmt.Sprintf("%d", id))
	}

	return ids, rows.Err()
}

// CreateItem stores a listing and bumps the seller's listing counter.
func (p *Postgres) CreateItem(ctx context.Context, sellerID string, req types.ItemPostRequest) (string, error) {
	itemID := req.ID
	if itemID == "" {
		itemID = uuid.New().String()
	}

	err := p.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET listing_count = listing_count + 1 WHERE id = $1`, sellerID)
		if err != nil {
			return err
		}
		if err := expectOne(res, storage.ErrUserNotFound); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO items (id, seller_id, title, description, price, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6)
		`, itemID, sellerID, req.Title, req.Description, req.Price, pq.Array(nonNil(req.ImageURLs)))
		return err
	})
	if isInvalidText(err) {
		return "", storage.ErrUserNotFound
	}
	if hasCode(err, codeUniqueViolation) {
		return "", storage.ErrItemExists
	}
	if err != nil {
		return "", err
	}

	return itemID, nil
}

// ShareItem records a share and bumps the sharer's counter.
func (p *Postgres) ShareItem(ctx context.Context, itemID, userID string) error {
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists)
		if isInvalidText(err) {
			return storage.ErrItemNotFound
		}
		if err != nil {
			return err
		}
		if !exists {
			return storage.ErrItemNotFound
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE users SET shared_count = shared_count + 1 WHERE id = $1`, userID)
		if err != nil {
			return err
		}
		if err := expectOne(res, storage.ErrUserNotFound); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO item_shares (item_id, user_id) VALUES ($1, $2)`, itemID, userID)
		return err
	})
	if isInvalidText(err) {
		return storage.ErrUserNotFound
	}
	return err
}

func (p *Postgres) CreateCampaign(ctx context.Context, ngoID string, req types.CampaignPostRequest) (string, error) {
	campaignID := req.ID
	if campaignID == "" {
		campaignID = uuid.New().String()
	}

	query := `
	INSERT INTO campaigns (id, ngo_id, title, description, goal, image_urls)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.Db.ExecContext(ctx, query,
		campaignID, ngoID, req.Title, req.Description, req.Goal, pq.Array(nonNil(req.ImageURLs)))
	if hasCode(err, codeUniqueViolation) {
		return "", storage.ErrCampaignExists
	}
	if err != nil {
		return "", err
	}

	return campaignID, nil
}

// RecordDonation adds amount to the campaign and to the donor's counters in
// one transaction.
func (p *Postgres) RecordDonation(ctx context.Context, campaignID, donorID string, amount float64) (string, error) {
	var donationID int

	err := p.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE campaigns SET raised = raised + $2 WHERE id = $1`, campaignID, amount)
		if isInvalidText(err) {
			return storage.ErrCampaignNotFound
		}
		if err != nil {
			return err
		}
		if err := expectOne(res, storage.ErrCampaignNotFound); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `
		UPDATE users SET donation_count = donation_count + 1, total_donated = total_donated + $2
		WHERE id = $1
		`, donorID, amount)
		if isInvalidText(err) {
			return storage.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if err := expectOne(res, storage.ErrUserNotFound); err != nil {
			return err
		}

		return tx.QueryRowContext(ctx, `
		INSERT INTO donations (campaign_id, donor_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id
		`, campaignID, donorID, amount).Scan(&donationID)
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", donationID), nil
}

func (p *Postgres) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.Db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isInvalidText(err error) bool {
	return hasCode(err, codeInvalidText)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
