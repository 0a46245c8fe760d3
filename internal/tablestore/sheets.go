package tablestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const sheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// SheetsGrid is a Grid backed by one tab of a Google spreadsheet.
type SheetsGrid struct {
	values        *sheets.SpreadsheetsValuesService
	spreadsheets  *sheets.SpreadsheetsService
	spreadsheetID string
	sheet         string
}

// Credentials identify the service account the spreadsheet is shared with.
type Credentials struct {
	ClientEmail string
	// PrivateKey may carry literal "\n" sequences, as it usually does when
	// read from a single-line environment variable.
	PrivateKey string
}

// NewSheetsGrid authenticates with a service account and opens sheet inside
// the spreadsheet spreadsheetID.
func NewSheetsGrid(ctx context.Context, creds Credentials, spreadsheetID, sheet string) (*SheetsGrid, error) {
	conf := &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: []byte(strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")),
		Scopes:     []string{sheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	srv, err := sheets.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return NewSheetsGridWithService(srv, spreadsheetID, sheet), nil
}

// NewSheetsGridWithService opens sheet through an already configured service.
func NewSheetsGridWithService(srv *sheets.Service, spreadsheetID, sheet string) *SheetsGrid {
	return &SheetsGrid{
		values:        srv.Spreadsheets.Values,
		spreadsheets:  srv.Spreadsheets,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
	}
}

func (g *SheetsGrid) Header(ctx context.Context) ([]string, error) {
	resp, err := g.values.Get(g.spreadsheetID, g.a1("1:1")).Context(ctx).Do()
	if err != nil {
		return nil, sheetsErr(err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return toStrings(resp.Values[0]), nil
}

// WriteHeader clears the header row before writing it, so labels beyond
// the new header do not survive.
func (g *SheetsGrid) WriteHeader(ctx context.Context, header []string) error {
	_, err := g.values.Clear(g.spreadsheetID, g.a1("1:1"), &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return sheetsErr(err)
	}
	return g.update(ctx, g.a1("1:1"), header)
}

func (g *SheetsGrid) Rows(ctx context.Context) ([][]string, error) {
	resp, err := g.values.Get(g.spreadsheetID, g.a1("A2:ZZ")).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, sheetsErr(err)
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = toStrings(r)
	}
	return rows, nil
}

func (g *SheetsGrid) UpdateRow(ctx context.Context, row int, cells []string) error {
	return g.update(ctx, g.a1(fmt.Sprintf("A%d", row)), cells)
}

func (g *SheetsGrid) AppendRow(ctx context.Context, cells []string) error {
	_, err := g.values.Append(g.spreadsheetID, g.a1("A1"), valueRange(cells)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return sheetsErr(err)
}

func (g *SheetsGrid) Title(ctx context.Context) (string, error) {
	resp, err := g.spreadsheets.Get(g.spreadsheetID).
		Fields("properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", sheetsErr(err)
	}
	if resp.Properties == nil {
		return "", nil
	}
	return resp.Properties.Title, nil
}

func (g *SheetsGrid) update(ctx context.Context, rng string, cells []string) error {
	_, err := g.values.Update(g.spreadsheetID, rng, valueRange(cells)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return sheetsErr(err)
}

// a1 qualifies a range with the sheet name.
func (g *SheetsGrid) a1(rng string) string {
	return "'" + strings.ReplaceAll(g.sheet, "'", "''") + "'!" + rng
}

func valueRange(cells []string) *sheets.ValueRange {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return &sheets.ValueRange{Values: [][]any{row}}
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = Serialize(c)
	}
	return out
}

// ErrAuth reports rejected service account credentials.
var ErrAuth = errors.New("authentication with Google Sheets failed, check the credentials")

func sheetsErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "invalid_grant") {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return fmt.Errorf("google sheets: %s (%d)", gerr.Message, gerr.Code)
	}
	return err
}
