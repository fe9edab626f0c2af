package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	userDatamodel "github.com/frahmantamala/org-directory/internal/core/datamodel/user"
	"github.com/frahmantamala/org-directory/internal/user"
)

// requiredColumns must all appear in the header row of the first sheet.
var requiredColumns = []string{
	"first_name", "last_name", "age", "email", "password",
	"organisation_id", "department_id", "role",
}

// UserCreator is the slice of the user service the importer needs. Each row
// goes through the same validation and authorization as a single create.
type UserCreator interface {
	Create(ctx context.Context, actor *auth.Principal, dto user.CreateUserDTO) (*userDatamodel.User, error)
}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Summary struct {
	Created int        `json:"created"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

type Service struct {
	users  UserCreator
	audit  auth.AuditRecorder
	logger *slog.Logger
}

func NewService(users UserCreator, audit auth.AuditRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, audit: audit, logger: logger}
}

// Import reads an xlsx workbook and creates one user per data row. A bad row
// is recorded and skipped; it never aborts the rest of the file.
func (s *Service) Import(ctx context.Context, actor auth.Principal, r io.Reader) (*Summary, error) {
	if err := auth.Authorize(actor, auth.ActionUserImport, auth.Target{OrganisationID: actor.OrganisationID}); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, internal.NewValidationError("File must be a valid xlsx workbook", internal.ErrCodeValidationFailed)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, internal.NewValidationError("Workbook has no sheets", internal.ErrCodeValidationFailed)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, internal.NewInternalError("failed to read sheet", err)
	}
	if len(rows) == 0 {
		return nil, internal.NewValidationError("Sheet has no header row", internal.ErrCodeValidationFailed)
	}

	columns, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	summary := &Summary{Errors: []RowError{}}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		dto, parseErr := parseRow(row, columns)
		if parseErr != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Row: rowNum, Error: parseErr.Error()})
			continue
		}

		if _, createErr := s.users.Create(ctx, &actor, *dto); createErr != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Row: rowNum, Error: createErr.Error()})
			continue
		}
		summary.Created++
	}

	if err := s.audit.Record(ctx, &actor.ID,
		fmt.Sprintf("Imported users from file: %d created, %d failed", summary.Created, summary.Failed),
		actor.OrganisationID, nil); err != nil {
		return summary, internal.NewInternalError("failed to record user import", err)
	}
	return summary, nil
}

// headerIndex maps required column names to their positions. Header matching
// is case-insensitive and ignores surrounding whitespace.
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, internal.NewValidationError(
			"Missing required columns: "+strings.Join(missing, ", "),
			internal.ErrCodeValidationFailed)
	}
	return index, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseRow(row []string, columns map[string]int) (*user.CreateUserDTO, error) {
	dto := &user.CreateUserDTO{
		FirstName: cell(row, columns["first_name"]),
		LastName:  cell(row, columns["last_name"]),
		Email:     cell(row, columns["email"]),
		Password:  cell(row, columns["password"]),
		Role:      cell(row, columns["role"]),
	}

	if raw := cell(row, columns["age"]); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid age %q", raw)
		}
		dto.Age = age
	}

	if raw := cell(row, columns["organisation_id"]); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid organisation_id %q", raw)
		}
		dto.OrganisationID = &id
	}

	if raw := cell(row, columns["department_id"]); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid department_id %q", raw)
		}
		dto.DepartmentID = &id
	}

	return dto, nil
}
