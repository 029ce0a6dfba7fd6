package fund

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"SiteSim/internal/model"
)

// LoadStatement reads a finance statement written by SaveStatement and
// checks that its rows add up.
func LoadStatement(filePath string) (*model.Statement, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}
	var st model.Statement
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode statement %s: %w", filePath, err)
	}
	if err := CheckStatement(&st); err != nil {
		return nil, fmt.Errorf("statement %s: %w", filePath, err)
	}
	return &st, nil
}

// SaveStatement writes the statement as indented JSON, creating the
// parent directory when needed.
func SaveStatement(filePath string, st *model.Statement) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode statement: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create statement dir: %w", err)
		}
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("write statement: %w", err)
	}
	return nil
}

// CheckStatement verifies the cash identities between consecutive rows:
// weeks start at 0 without gaps, every week's net is income plus loan
// payout minus repayment and expenses, and balances and loan balances
// accumulate those movements.
func CheckStatement(st *model.Statement) error {
	var prev model.FinanceRow
	for i, row := range st.Rows {
		if row.Week != i {
			return fmt.Errorf("row %d is week %d", i, row.Week)
		}
		net := row.Incoming.Add(row.Loan).Sub(row.LoanRepay).Sub(row.Outgoing)
		if !net.Equal(row.WeeklyNet) {
			return fmt.Errorf("week %d: net %s, rows add up to %s", row.Week, row.WeeklyNet, net)
		}
		if want := prev.Balance.Add(row.WeeklyNet); !want.Equal(row.Balance) {
			return fmt.Errorf("week %d: balance %s, expected %s", row.Week, row.Balance, want)
		}
		if want := prev.LoanOutstanding.Add(row.Loan).Sub(row.LoanRepay); !want.Equal(row.LoanOutstanding) {
			return fmt.Errorf("week %d: loan outstanding %s, expected %s", row.Week, row.LoanOutstanding, want)
		}
		prev = row
	}
	return nil
}
