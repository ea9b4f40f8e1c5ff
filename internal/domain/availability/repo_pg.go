package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type slotTemplateRepoPG struct{ pool *pgxpool.Pool }

func NewSlotTemplateRepoPG(pool *pgxpool.Pool) SlotTemplateRepository {
	return &slotTemplateRepoPG{pool: pool}
}

func (r *slotTemplateRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const templateCols = `id, doctor_id, slot, created_at`

func scanTemplate(row pgx.Row) (*SlotTemplate, error) {
	var t SlotTemplate
	err := row.Scan(&t.ID, &t.DoctorID, &t.Slot, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotOwned
	}
	return &t, err
}

func (r *slotTemplateRepoPG) Create(ctx context.Context, t *SlotTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO slot_template (id, doctor_id, slot)
		VALUES ($1,$2,$3)`,
		t.ID, t.DoctorID, t.Slot)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSlot
	}
	return err
}

func (r *slotTemplateRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SlotTemplate, error) {
	return scanTemplate(r.conn(ctx).QueryRow(ctx, `SELECT `+templateCols+` FROM slot_template WHERE id = $1`, id))
}

func (r *slotTemplateRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM slot_template WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotOwned
	}
	return nil
}

func (r *slotTemplateRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*SlotTemplate, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+templateCols+` FROM slot_template WHERE doctor_id = $1 ORDER BY slot ASC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*SlotTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const doctorCols = `d.id, d.name, d.specialty, d.email, d.phone, d.active, d.created_at, d.updated_at`

func (r *slotTemplateRepoPG) FilterDoctors(ctx context.Context, slot, name, specialty string, limit, offset int) ([]*directory.Doctor, int, error) {
	where := ` WHERE d.active`
	var args []interface{}
	idx := 1

	if slot != "" {
		where += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM slot_template st WHERE st.doctor_id = d.id AND st.slot = $%d)`, idx)
		args = append(args, slot)
		idx++
	}
	if name != "" {
		where += fmt.Sprintf(` AND d.name ILIKE $%d`, idx)
		args = append(args, "%"+name+"%")
		idx++
	}
	if specialty != "" {
		where += fmt.Sprintf(` AND d.specialty ILIKE $%d`, idx)
		args = append(args, "%"+specialty+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor d`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + doctorCols + ` FROM doctor d` + where +
		fmt.Sprintf(` ORDER BY d.name ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*directory.Doctor
	for rows.Next() {
		var d directory.Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Email, &d.Phone, &d.Active,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &d)
	}
	return items, total, rows.Err()
}
