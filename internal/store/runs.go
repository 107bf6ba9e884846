package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"overtime/internal/model"
)

// 计算状态
const (
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// ErrRunNotFound 计算记录不存在
var ErrRunNotFound = errors.New("run not found")

// Run 一次计算记录
type Run struct {
	ID           string     `json:"id"`
	Filename     string     `json:"filename"`
	FileHash     string     `json:"fileHash"`
	Sheet        string     `json:"sheet"`
	Employees    int        `json:"employees"`
	Days         int        `json:"days"`
	ErrorCount   int        `json:"errorCount"`
	TotalHours   float64    `json:"totalHours"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"errorMessage"`
	OutputPath   string     `json:"outputPath"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// RunError 计算记录中的错误单元格
type RunError struct {
	EmployeeID string          `json:"employeeId"`
	SheetRow   int             `json:"sheetRow"`
	Day        int             `json:"day"`
	CellRef    string          `json:"cellRef"`
	Raw        string          `json:"raw"`
	Kind       model.ErrorKind `json:"kind"`
	Reason     string          `json:"reason"`
}

// CreateRun 创建计算记录，返回 run id
func (s *Store) CreateRun(filename, fileHash string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(`
		INSERT INTO runs (id, filename, file_hash, status)
		VALUES (?, ?, ?, ?)
	`, id, filename, fileHash, RunStatusProcessing)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun 写入计算结果与错误单元格
func (s *Store) CompleteRun(id string, at *model.AnnotatedTable, outputPath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sheet := ""
	employees := 0
	if at.Source != nil {
		sheet = at.Source.Sheet
		employees = len(at.Source.Rows)
	}

	res, err := tx.Exec(`
		UPDATE runs SET
			sheet = ?,
			employees = ?,
			days = ?,
			error_count = ?,
			total_hours = ?,
			status = ?,
			output_path = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sheet, employees, len(at.Columns), at.ErrorCount(), at.TotalOvertimeHours(), RunStatusCompleted, outputPath, id)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_errors (run_id, employee_id, sheet_row, day, cell_ref, raw, kind, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare run error insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range at.Flags {
		if _, err := stmt.Exec(id, m.EmployeeID, m.SheetRow, m.Day, m.Ref, m.Raw, string(m.Kind), m.Reason); err != nil {
			return fmt.Errorf("failed to insert run error: %w", err)
		}
	}

	return tx.Commit()
}

// FailRun 标记计算失败
func (s *Store) FailRun(id, message string) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, RunStatusFailed, message, id)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

const runColumns = `id, filename, file_hash, sheet, employees, days, error_count, total_hours,
	status, error_message, output_path, created_at, completed_at`

// GetRun 查询单条记录
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return r, nil
}

// ListRuns 按时间倒序列出最近的记录
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListRunErrors 列出某次计算的错误单元格
func (s *Store) ListRunErrors(id string) ([]RunError, error) {
	rows, err := s.db.Query(`
		SELECT employee_id, sheet_row, day, cell_ref, raw, kind, reason
		FROM run_errors WHERE run_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list run errors: %w", err)
	}
	defer rows.Close()

	out := []RunError{}
	for rows.Next() {
		var e RunError
		var kind string
		if err := rows.Scan(&e.EmployeeID, &e.SheetRow, &e.Day, &e.CellRef, &e.Raw, &kind, &e.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan run error: %w", err)
		}
		e.Kind = model.ErrorKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var completed sql.NullTime
	if err := sc.Scan(&r.ID, &r.Filename, &r.FileHash, &r.Sheet, &r.Employees, &r.Days, &r.ErrorCount, &r.TotalHours,
		&r.Status, &r.ErrorMessage, &r.OutputPath, &r.CreatedAt, &completed); err != nil {
		return nil, err
	}
	if completed.Valid {
		t := completed.Time
		r.CompletedAt = &t
	}
	return &r, nil
}
