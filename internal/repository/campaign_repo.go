package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/willjrcristo/moneyquest-api/internal/domain"
)

// CampaignRepository é o lado servidor de get_active_campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, c domain.Campaign) (uuid.UUID, error)
	GetAll(ctx context.Context) ([]domain.Campaign, error)
	// GetActive filtra por is_active, janela de datas e público (o pedido ou "all"),
	// em ordem de prioridade decrescente, até limit linhas.
	GetActive(ctx context.Context, audience domain.Audience, now time.Time, limit int) ([]domain.Campaign, error)
}

type sqliteCampaignRepository struct {
	db *sql.DB
}

func NewSQLiteCampaignRepository(db *sql.DB) CampaignRepository {
	return &sqliteCampaignRepository{db: db}
}

const campaignColumns = `id, type, title, subtitle, cta_text, cta_link, icon, background_color, text_color,
	priority, is_active, start_date, end_date, target_audience, created_at`

func (r *sqliteCampaignRepository) Create(ctx context.Context, c domain.Campaign) (uuid.UUID, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.TargetAudience == "" {
		c.TargetAudience = domain.AudienceAll
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	stmt, err := r.db.PrepareContext(ctx, "INSERT INTO campaigns("+campaignColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return uuid.Nil, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		c.ID.String(), string(c.Type), c.Title, c.Subtitle, c.CTAText, c.CTALink, c.Icon, c.BackgroundColor, c.TextColor,
		c.Priority, c.IsActive, toMillis(c.StartDate), toMillis(c.EndDate), string(c.TargetAudience), c.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

func (r *sqliteCampaignRepository) GetAll(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+campaignColumns+" FROM campaigns ORDER BY priority DESC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCampaigns(rows)
}

func (r *sqliteCampaignRepository) GetActive(ctx context.Context, audience domain.Audience, now time.Time, limit int) ([]domain.Campaign, error) {
	if limit <= 0 {
		limit = 10
	}
	ms := now.UnixMilli()
	rows, err := r.db.QueryContext(ctx, "SELECT "+campaignColumns+` FROM campaigns
		WHERE is_active = 1
		  AND (start_date IS NULL OR start_date <= ?)
		  AND (end_date IS NULL OR end_date >= ?)
		  AND target_audience IN (?, 'all')
		ORDER BY priority DESC
		LIMIT ?`, ms, ms, string(audience), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCampaigns(rows)
}

func scanCampaigns(rows *sql.Rows) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	for rows.Next() {
		var (
			c                  domain.Campaign
			id, typ, audience  string
			startDate, endDate sql.NullInt64
			createdAt          int64
		)
		if err := rows.Scan(&id, &typ, &c.Title, &c.Subtitle, &c.CTAText, &c.CTALink, &c.Icon,
			&c.BackgroundColor, &c.TextColor, &c.Priority, &c.IsActive, &startDate, &endDate, &audience, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		c.ID = parsed
		c.Type = domain.CampaignType(typ)
		c.TargetAudience = domain.Audience(audience)
		c.StartDate = fromMillis(startDate)
		c.EndDate = fromMillis(endDate)
		c.CreatedAt = time.UnixMilli(createdAt).UTC()
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}
