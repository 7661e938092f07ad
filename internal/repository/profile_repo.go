package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/willjrcristo/moneyquest-api/internal/domain"
)

// ErrNotFound é devolvido por operações de escrita sobre registros inexistentes.
var ErrNotFound = errors.New("registro não encontrado")

// ProfileRepository define a persistência de perfis.
// Leituras devolvem (nil, nil) quando o perfil não existe.
type ProfileRepository interface {
	Create(ctx context.Context, p domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.Profile, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) error
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
	DowngradeExpiredPremium(ctx context.Context, now time.Time) (int64, error)
	Stats(ctx context.Context, now time.Time) (domain.SubscriptionStats, error)
}

type sqliteProfileRepository struct {
	db *sql.DB
}

func NewSQLiteProfileRepository(db *sql.DB) ProfileRepository {
	return &sqliteProfileRepository{db: db}
}

const profileColumns = `id, subscription_plan, subscription_expires_at, trial_active, trial_ends_at,
	timezone, theme_preference, language, total_income, total_expenses, financial_mood,
	stripe_customer_id, stripe_subscription_id, created_at, updated_at`

func (r *sqliteProfileRepository) Create(ctx context.Context, p domain.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.SubscriptionPlan == "" {
		p.SubscriptionPlan = domain.PlanFree
	}
	if p.ThemePreference == "" {
		p.ThemePreference = "system"
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO profiles(`+profileColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		p.ID.String(), string(p.SubscriptionPlan), toMillis(p.SubscriptionExpiresAt), p.TrialActive, toMillis(p.TrialEndsAt),
		p.Timezone, p.ThemePreference, p.Language, p.TotalIncome, p.TotalExpenses, moodValue(p.FinancialMood),
		p.StripeCustomerID, p.StripeSubscriptionID, p.CreatedAt.UnixMilli(), p.UpdatedAt.UnixMilli(),
	)
	return err
}

func (r *sqliteProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE id = ?", id.String())
	return scanProfile(row)
}

func (r *sqliteProfileRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.Profile, error) {
	if customerID == "" {
		return nil, nil
	}
	row := r.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE stripe_customer_id = ?", customerID)
	return scanProfile(row)
}

// Update grava apenas os campos presentes no patch.
func (r *sqliteProfileRepository) Update(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) error {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.SubscriptionPlan != nil {
		set("subscription_plan", string(*patch.SubscriptionPlan))
	}
	if patch.SubscriptionExpiresAt != nil {
		set("subscription_expires_at", toMillis(patch.SubscriptionExpiresAt))
	}
	if patch.TrialActive != nil {
		set("trial_active", *patch.TrialActive)
	}
	if patch.TrialEndsAt != nil {
		set("trial_ends_at", toMillis(patch.TrialEndsAt))
	}
	if patch.Timezone != nil {
		set("timezone", *patch.Timezone)
	}
	if patch.ThemePreference != nil {
		set("theme_preference", *patch.ThemePreference)
	}
	if patch.Language != nil {
		set("language", *patch.Language)
	}
	if patch.TotalIncome != nil {
		set("total_income", *patch.TotalIncome)
	}
	if patch.TotalExpenses != nil {
		set("total_expenses", *patch.TotalExpenses)
	}
	if patch.FinancialMood != nil {
		set("financial_mood", string(*patch.FinancialMood))
	}
	if patch.StripeCustomerID != nil {
		set("stripe_customer_id", *patch.StripeCustomerID)
	}
	if patch.StripeSubscriptionID != nil {
		set("stripe_subscription_id", *patch.StripeSubscriptionID)
	}
	if len(sets) == 0 {
		return nil
	}
	set("updated_at", time.Now().UnixMilli())
	args = append(args, id.String())

	res, err := r.db.ExecContext(ctx, "UPDATE profiles SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpireTrials desliga trials cujo fim já passou.
func (r *sqliteProfileRepository) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET trial_active = 0, updated_at = ?
		 WHERE trial_active = 1 AND trial_ends_at IS NOT NULL AND trial_ends_at <= ?`,
		now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DowngradeExpiredPremium volta para FREE os perfis PREMIUM vencidos.
// A data de expiração é mantida para histórico.
func (r *sqliteProfileRepository) DowngradeExpiredPremium(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET subscription_plan = 'FREE', updated_at = ?
		 WHERE subscription_plan = 'PREMIUM' AND subscription_expires_at IS NOT NULL AND subscription_expires_at <= ?`,
		now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sqliteProfileRepository) Stats(ctx context.Context, now time.Time) (domain.SubscriptionStats, error) {
	var s domain.SubscriptionStats
	ms := now.UnixMilli()
	err := r.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN subscription_plan = 'PREMIUM' AND (subscription_expires_at IS NULL OR subscription_expires_at > ?) THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN trial_active = 1 AND (trial_ends_at IS NULL OR trial_ends_at > ?) THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN subscription_plan = 'PREMIUM' AND subscription_expires_at IS NOT NULL AND subscription_expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM profiles`, ms, ms, ms).Scan(&s.TotalProfiles, &s.ActivePremium, &s.ActiveTrials, &s.ExpiredPremium)
	return s, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		p                   domain.Profile
		id, plan            string
		expiresAt, trialEnd sql.NullInt64
		mood                sql.NullString
		createdAt, updated  int64
	)
	err := row.Scan(&id, &plan, &expiresAt, &p.TrialActive, &trialEnd,
		&p.Timezone, &p.ThemePreference, &p.Language, &p.TotalIncome, &p.TotalExpenses, &mood,
		&p.StripeCustomerID, &p.StripeSubscriptionID, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	p.SubscriptionPlan = domain.Plan(plan)
	p.SubscriptionExpiresAt = fromMillis(expiresAt)
	p.TrialEndsAt = fromMillis(trialEnd)
	if mood.Valid && domain.Mood(mood.String).Valid() {
		m := domain.Mood(mood.String)
		p.FinancialMood = &m
	}
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return &p, nil
}

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

func moodValue(m *domain.Mood) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*m), Valid: true}
}
