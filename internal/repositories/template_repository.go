package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polarisid/smartos-sub000/internal/models"
)

// TemplateRepository stores document templates and their field layouts
type TemplateRepository struct {
	DB *pgxpool.Pool
}

func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func (r *TemplateRepository) Create(ctx context.Context, t *models.DocumentTemplate) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO document_templates(name, file_key) VALUES ($1, $2) RETURNING id, created_at`,
		t.Name, t.FileKey,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *TemplateRepository) Get(ctx context.Context, id int) (*models.DocumentTemplate, error) {
	var t models.DocumentTemplate
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, file_key, created_at FROM document_templates WHERE id=$1`, id,
	).Scan(&t.ID, &t.Name, &t.FileKey, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]*models.DocumentTemplate, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, file_key, created_at FROM document_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.DocumentTemplate
	for rows.Next() {
		var t models.DocumentTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.FileKey, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, &t)
	}
	return templates, rows.Err()
}

// ListFields returns the layout of a template in saved order
func (r *TemplateRepository) ListFields(ctx context.Context, templateID int) ([]models.FieldDefinition, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, template_id, name, field_type, page, x, y, variable_key
		 FROM template_fields
		 WHERE template_id=$1
		 ORDER BY position`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []models.FieldDefinition{}
	for rows.Next() {
		var f models.FieldDefinition
		if err := rows.Scan(&f.ID, &f.TemplateID, &f.Name, &f.Type, &f.Page, &f.X, &f.Y, &f.VariableKey); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// ReplaceFields swaps the whole layout of a template in one transaction
func (r *TemplateRepository) ReplaceFields(ctx context.Context, templateID int, fields []models.FieldDefinition) error {
	return pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM template_fields WHERE template_id=$1`, templateID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, f := range fields {
			batch.Queue(
				`INSERT INTO template_fields(id, template_id, name, field_type, page, x, y, variable_key, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				f.ID, templateID, f.Name, f.Type, f.Page, f.X, f.Y, f.VariableKey, i,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
