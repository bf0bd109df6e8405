package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/country-cache-server/internal/db"
	"github.com/stacklok/country-cache-server/internal/db/pgtypes"
	"github.com/stacklok/country-cache-server/internal/db/sqlc"
	"github.com/stacklok/country-cache-server/internal/service"
)

// tempCountryColumns is the COPY column list of the temp_country table
var tempCountryColumns = []string{
	"ord", "name", "capital", "region", "population", "currency_code",
	"exchange_rate", "estimated_gdp", "flag_url", "last_refreshed_at",
}

// dbCountryWriter is a CountryWriter implementation that persists data to PostgreSQL
type dbCountryWriter struct {
	pool *pgxpool.Pool
}

// NewDBCountryWriter creates a new dbCountryWriter with the given connection pool.
// The caller is responsible for closing the pool when done.
func NewDBCountryWriter(pool *pgxpool.Pool) (CountryWriter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	return &dbCountryWriter{pool: pool}, nil
}

// LoadExisting reads the whole country table
func (d *dbCountryWriter) LoadExisting(ctx context.Context) (map[string]*service.Country, error) {
	rows, err := sqlc.New(d.pool).ListAllCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}

	countries, err := db.CountriesFromRows(rows)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]*service.Country, len(countries))
	for _, c := range countries {
		existing[c.Key()] = c
	}
	return existing, nil
}

// InsertMany copies the countries into a temp table and inserts them in one statement.
//
// The operation runs in a serializable transaction; the temp table is dropped at
// commit. Generated IDs are written back onto the given records.
func (d *dbCountryWriter) InsertMany(ctx context.Context, countries []*service.Country) error {
	if len(countries) == 0 {
		return nil
	}

	tx, err := d.beginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	querier := sqlc.New(tx)
	if err := querier.CreateTempCountryTable(ctx); err != nil {
		return fmt.Errorf("failed to create temp country table: %w", err)
	}

	rows := make([][]any, 0, len(countries))
	for i, c := range countries {
		rows = append(rows, []any{
			int32(i),
			c.Name,
			c.Capital,
			c.Region,
			c.Population,
			c.CurrencyCode,
			pgtypes.NumericFromDecimal(c.ExchangeRate),
			pgtypes.NumericFromDecimal(c.EstimatedGDP),
			c.FlagURL,
			pgtypes.Timestamptz(c.LastRefreshedAt),
		})
	}

	copyCount, err := tx.CopyFrom(ctx, pgx.Identifier{"temp_country"}, tempCountryColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy countries to temp table: %w", err)
	}
	if int(copyCount) != len(countries) {
		return fmt.Errorf("copy count mismatch: expected %d, got %d", len(countries), copyCount)
	}

	inserted, err := querier.InsertCountriesFromTemp(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert countries from temp table: %w", err)
	}

	ids := make(map[string]int64, len(inserted))
	for _, row := range inserted {
		ids[row.NameKey] = row.ID
	}
	assigned, err := matchInsertedIDs(countries, ids)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for i, c := range countries {
		c.ID = assigned[i]
	}
	return nil
}

// matchInsertedIDs pairs each country with the ID returned for its lower-cased name
func matchInsertedIDs(countries []*service.Country, ids map[string]int64) ([]int64, error) {
	assigned := make([]int64, len(countries))
	for i, c := range countries {
		id, ok := ids[strings.ToLower(c.Name)]
		if !ok || id == 0 {
			return nil, fmt.Errorf("no id returned for inserted country %s", c.Name)
		}
		assigned[i] = id
	}
	return assigned, nil
}

// UpdateMany writes the listed columns of each country, matched by ID, in a single batch
func (d *dbCountryWriter) UpdateMany(ctx context.Context, countries []*service.Country, fields []string) error {
	if len(countries) == 0 || len(fields) == 0 {
		return nil
	}
	if err := ValidateFields(fields); err != nil {
		return err
	}

	query := buildUpdateQuery(fields)

	tx, err := d.beginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, c := range countries {
		args := make([]any, 0, len(fields)+1)
		for _, f := range fields {
			args = append(args, fieldValue(c, f))
		}
		args = append(args, c.ID)
		batch.Queue(query, args...)
	}

	var missing []*service.Country
	br := tx.SendBatch(ctx, batch)
	for _, c := range countries {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to update country %s: %w", c.Name, err)
		}
		if tag.RowsAffected() == 0 {
			missing = append(missing, c)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close update batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logMissing(missing)
	return nil
}

func (d *dbCountryWriter) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("Failed to roll back transaction", "error", err)
	}
}

// buildUpdateQuery renders an UPDATE for validated column names; the id is the last parameter
func buildUpdateQuery(fields []string) string {
	sets := make([]string, 0, len(fields)+1)
	for i, f := range fields {
		sets = append(sets, fmt.Sprintf("%s = $%d", f, i+1))
	}
	sets = append(sets, "updated_at = now()")
	return fmt.Sprintf("UPDATE country SET %s WHERE id = $%d", strings.Join(sets, ", "), len(fields)+1)
}

func fieldValue(c *service.Country, field string) any {
	switch field {
	case FieldCapital:
		return c.Capital
	case FieldRegion:
		return c.Region
	case FieldPopulation:
		return c.Population
	case FieldCurrencyCode:
		return c.CurrencyCode
	case FieldExchangeRate:
		return pgtypes.NumericFromDecimal(c.ExchangeRate)
	case FieldEstimatedGDP:
		return pgtypes.NumericFromDecimal(c.EstimatedGDP)
	case FieldFlagURL:
		return c.FlagURL
	case FieldLastRefreshedAt:
		return pgtypes.Timestamptz(c.LastRefreshedAt)
	default:
		return nil
	}
}
