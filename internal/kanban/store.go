package kanban

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jobmate/recruiting-board/internal/pipeline"
)

// ─── Store ───────────────────────────────────────────────────────────────────

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store loads the board read model from the recruiting database. It never
// writes: every change goes through the backend's HTTP endpoints.
type Store struct {
	db  Querier
	log logrus.FieldLogger
}

// NewStore returns a Store over db.
func NewStore(db Querier, log logrus.FieldLogger) *Store {
	return &Store{db: db, log: log.WithField("component", "store")}
}

// BoardQuery narrows the board. Zero values mean no filter.
type BoardQuery struct {
	Search    string
	StartDate *time.Time
}

// hiddenCodes are master states never rendered on the board.
var hiddenCodes = []string{pipeline.StageNotSuitable.Code(), pipeline.StageWithdrawn.Code()}

const boardSQL = `
	SELECT c."DNI", c.nombres_completos, COALESCE(c.telefono_whatsapp, ''),
	       c.estado_actual, c.fecha_registro,
	       COALESCE(p.id::text, ''), COALESCE(p.estado, ''), p.fecha_inicio,
	       COALESCE(e.nombre, ''), COALESCE(s.nombre, ''), COALESCE(sd.nombre, '')
	FROM candidatos_candidato c
	LEFT JOIN LATERAL (
	    SELECT pr.id, pr.estado, pr.fecha_inicio, pr.empresa_proceso_id,
	           pr.supervisor_id, pr.sede_proceso_id
	    FROM candidatos_proceso pr
	    WHERE pr.candidato_id = c."DNI"
	    ORDER BY pr.fecha_inicio DESC, pr.id DESC
	    LIMIT 1
	) p ON true
	LEFT JOIN candidatos_empresa e    ON e.id  = p.empresa_proceso_id
	LEFT JOIN candidatos_supervisor s ON s.id  = p.supervisor_id
	LEFT JOIN candidatos_sede sd      ON sd.id = p.sede_proceso_id
	WHERE c.kanban_activo = true
	  AND NOT (c.estado_actual = ANY($1::text[]))
	  AND ($2::text = '' OR c."DNI" ILIKE '%' || $2 || '%' OR c.nombres_completos ILIKE '%' || $2 || '%')
	  AND ($3::date IS NULL OR p.fecha_inicio = $3::date)
	ORDER BY c.fecha_registro DESC, c.nombres_completos`

// LoadBoard reads every visible candidate with its latest process.
func (s *Store) LoadBoard(ctx context.Context, q BoardQuery) (*Board, error) {
	rows, err := s.db.Query(ctx, boardSQL, hiddenCodes, q.Search, q.StartDate)
	if err != nil {
		return nil, errors.Wrap(err, "loadBoard query")
	}
	defer rows.Close()

	cards := make([]Card, 0)
	for rows.Next() {
		var (
			c    Card
			code string
		)
		if err := rows.Scan(
			&c.DNI, &c.Name, &c.Phone, &code, &c.RegisteredAt,
			&c.ProcessID, &c.ProcessStatus, &c.StartDate,
			&c.Company, &c.Supervisor, &c.Site,
		); err != nil {
			return nil, errors.Wrap(err, "loadBoard scan")
		}
		st, err := pipeline.FromCode(code)
		if err != nil {
			s.log.WithField("dni", c.DNI).WithError(err).Warn("skipping candidate with unknown state")
			continue
		}
		c.Stage = st
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "loadBoard rows")
	}
	s.log.WithField("cards", len(cards)).Debug("board loaded")
	return NewBoard(cards), nil
}

// Supervisor is an assignable practice supervisor.
type Supervisor struct {
	ID   int
	Name string
}

// Supervisors lists the supervisors offered by the assignment forms.
func (s *Store) Supervisors(ctx context.Context) ([]Supervisor, error) {
	rows, err := s.db.Query(ctx, `SELECT id, nombre FROM candidatos_supervisor ORDER BY nombre`)
	if err != nil {
		return nil, errors.Wrap(err, "supervisors query")
	}
	defer rows.Close()

	out := make([]Supervisor, 0)
	for rows.Next() {
		var sv Supervisor
		if err := rows.Scan(&sv.ID, &sv.Name); err != nil {
			return nil, errors.Wrap(err, "supervisors scan")
		}
		out = append(out, sv)
	}
	return out, errors.Wrap(rows.Err(), "supervisors rows")
}

// StartDates lists the distinct process start dates, newest first, for the
// board's date filter.
func (s *Store) StartDates(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT pr.fecha_inicio
		FROM candidatos_proceso pr
		JOIN candidatos_candidato c ON c."DNI" = pr.candidato_id
		WHERE c.kanban_activo = true
		ORDER BY pr.fecha_inicio DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "startDates query")
	}
	defer rows.Close()

	out := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, errors.Wrap(err, "startDates scan")
		}
		out = append(out, d)
	}
	return out, errors.Wrap(rows.Err(), "startDates rows")
}
