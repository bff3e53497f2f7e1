package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insights/customErrors"
	"github.com/fatali-fataliyev/budget_insights/internal/auth"
	"github.com/fatali-fataliyev/budget_insights/internal/budget"
	"github.com/fatali-fataliyev/budget_insights/internal/config"
	"github.com/fatali-fataliyev/budget_insights/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insights/internal/currency"
	"github.com/fatali-fataliyev/budget_insights/logging"
	"github.com/go-sql-driver/mysql"
)

const (
	pingAttempts = 15
	pingInterval = 3 * time.Second
)

// --- INIT START --- //

// Init waits for the server, creates the database when missing, applies
// migrations and returns the pooled handle.
func Init(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", cfg.MySQLAdminDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %w", err)
	}
	defer adminDb.Close()

	if err := waitForDatabase(ctx, adminDb); err != nil {
		return nil, err
	}

	dbname := cfg.DBName
	if cfg.FullDSN != "" {
		if parsed, err := mysql.ParseDSN(cfg.FullDSN); err == nil && parsed.DBName != "" {
			dbname = parsed.DBName
		}
	}

	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err = adminDb.QueryRowContext(ctx, checkDbnameExistQuery, dbname).Scan(&dbnameExistence)
	if errors.Is(err, sql.ErrNoRows) {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.ExecContext(ctx, createDbSql); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %w", err)
	}

	logging.Logger.Info("Running migrations...")
	if err := RunMigrations(cfg.MySQLDSN()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Logger.Info("Connecting to database...")
	db, err := sql.Open("mysql", cfg.MySQLDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Logger.Info("Connected to database successfully")
	return db, nil
}

func waitForDatabase(ctx context.Context, db *sql.DB) error {
	for i := 0; i < pingAttempts; i++ {
		if err := db.PingContext(ctx); err == nil {
			return nil
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/%d)", i+1, pingAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pingInterval):
		}
	}
	return fmt.Errorf("database unreachable after multiple attempts")
}

// --- INIT END --- //

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (mySql *MySQLStorage) GetStorageType() string {
	return "mysql"
}

// internalError logs err with the trace id and hides it behind message.
func internalError(ctx context.Context, fn string, action string, err error, message string) error {
	logging.Logger.Errorf("[TraceID=%s] | failed to %s in Storage.%s() function | Error: %v", contextutil.TraceIDFromContext(ctx), action, fn, err)
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrInternal,
		Message: message,
	}
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// --- USER SETTINGS --- //

func (mySql *MySQLStorage) GetOrCreateUserSettings(ctx context.Context, userID string) (budget.UserSettings, error) {
	query := "SELECT currency FROM user_settings WHERE user_id = ?;"

	var code string
	err := mySql.db.QueryRowContext(ctx, query, userID).Scan(&code)
	if err == nil {
		return budget.UserSettings{UserID: userID, Currency: code}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return budget.UserSettings{}, internalError(ctx, "GetOrCreateUserSettings", "get user settings", err, "Failed to get user settings, try again later.")
	}

	// INSERT IGNORE keeps concurrent first reads down to one row.
	insertQuery := "INSERT IGNORE INTO user_settings (user_id, currency) VALUES (?, ?);"
	if _, err := mySql.db.ExecContext(ctx, insertQuery, userID, currency.Default); err != nil {
		return budget.UserSettings{}, internalError(ctx, "GetOrCreateUserSettings", "create user settings", err, "Failed to get user settings, try again later.")
	}

	if err := mySql.db.QueryRowContext(ctx, query, userID).Scan(&code); err != nil {
		return budget.UserSettings{}, internalError(ctx, "GetOrCreateUserSettings", "read created user settings", err, "Failed to get user settings, try again later.")
	}
	return budget.UserSettings{UserID: userID, Currency: code}, nil
}

func (mySql *MySQLStorage) SaveUserCurrency(ctx context.Context, userID string, currencyCode string) (budget.UserSettings, error) {
	query := `INSERT INTO user_settings (user_id, currency) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE currency = VALUES(currency);`

	if _, err := mySql.db.ExecContext(ctx, query, userID, currencyCode); err != nil {
		return budget.UserSettings{}, internalError(ctx, "SaveUserCurrency", "update currency", err, "Failed to update currency, try again later.")
	}
	return budget.UserSettings{UserID: userID, Currency: currencyCode}, nil
}

// --- CATEGORIES --- //

func (mySql *MySQLStorage) SaveCategory(ctx context.Context, category budget.Category) error {
	query := "INSERT INTO category (user_id, name, icon, type, created_at) VALUES (?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, category.UserID, category.Name, category.Icon, string(category.Type), category.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: fmt.Sprintf("The %s category '%s' already exists.", category.Type, category.Name),
			}
		}
		return internalError(ctx, "SaveCategory", "save category", err, "Failed to save the category, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) GetCategory(ctx context.Context, userID string, key budget.CategoryKey) (budget.Category, error) {
	query := "SELECT user_id, name, icon, type, created_at FROM category WHERE user_id = ? AND name = ? AND type = ?;"

	var c dbCategory
	err := mySql.db.QueryRowContext(ctx, query, userID, key.Name, string(key.Type)).Scan(&c.UserID, &c.Name, &c.Icon, &c.Type, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.Category{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "The category does not exist.",
			}
		}
		return budget.Category{}, internalError(ctx, "GetCategory", "get category", err, "Failed to get the category, try again later.")
	}
	return c.toCategory(), nil
}

func (mySql *MySQLStorage) DeleteCategory(ctx context.Context, userID string, key budget.CategoryKey) error {
	query := "DELETE FROM category WHERE user_id = ? AND name = ? AND type = ?;"
	result, err := mySql.db.ExecContext(ctx, query, userID, key.Name, string(key.Type))
	if err != nil {
		return internalError(ctx, "DeleteCategory", "delete category", err, "Failed to delete the category.")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return internalError(ctx, "DeleteCategory", "check category delete status", err, "Failed to delete the category.")
	}
	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "The category does not exist.",
		}
	}
	return nil
}

func (mySql *MySQLStorage) ListCategories(ctx context.Context, userID string, cType *budget.TransactionType) ([]budget.Category, error) {
	query := "SELECT user_id, name, icon, type, created_at FROM category WHERE user_id = ?"
	args := []interface{}{userID}
	if cType != nil {
		query += " AND type = ?"
		args = append(args, string(*cType))
	}
	query += " ORDER BY name ASC;"

	rows, err := mySql.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, internalError(ctx, "ListCategories", "query categories", err, "Failed to get categories, try again later.")
	}
	defer rows.Close()

	categories := []budget.Category{}
	for rows.Next() {
		var c dbCategory
		if err := rows.Scan(&c.UserID, &c.Name, &c.Icon, &c.Type, &c.CreatedAt); err != nil {
			return nil, internalError(ctx, "ListCategories", "scan category row", err, "Failed to get categories, try again later.")
		}
		categories = append(categories, c.toCategory())
	}
	if err := rows.Err(); err != nil {
		return nil, internalError(ctx, "ListCategories", "iterate category rows", err, "Failed to get categories, try again later.")
	}
	return categories, nil
}

// --- TRANSACTIONS --- //

// applyRollup adds r to the day and month buckets. Row locks taken by the
// upserts serialise concurrent writers of the same bucket.
func applyRollup(ctx context.Context, tx *sql.Tx, r budget.Rollup) error {
	monthQuery := `INSERT INTO month_history (user_id, year, month, day, income, expense) VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE income = income + VALUES(income), expense = expense + VALUES(expense);`
	if _, err := tx.ExecContext(ctx, monthQuery, r.UserID, r.Year, r.Month, r.Day, r.Income, r.Expense); err != nil {
		return fmt.Errorf("update month history: %w", err)
	}

	yearQuery := `INSERT INTO year_history (user_id, year, month, income, expense) VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE income = income + VALUES(income), expense = expense + VALUES(expense);`
	if _, err := tx.ExecContext(ctx, yearQuery, r.UserID, r.Year, r.Month, r.Income, r.Expense); err != nil {
		return fmt.Errorf("update year history: %w", err)
	}
	return nil
}

const txAttempts = 3

// errTxNotFound is returned from inside a ledger transaction when the row to
// delete does not belong to the user.
var errTxNotFound = errors.New("transaction not found")

func isRetryable(err error) bool {
	var mysqlErr *mysql.MySQLError
	// 1213: deadlock, 1205: lock wait timeout.
	return errors.As(err, &mysqlErr) && (mysqlErr.Number == 1213 || mysqlErr.Number == 1205)
}

// inTx runs fn in a SQL transaction, retrying the whole unit when InnoDB
// picks it as a deadlock victim.
func (mySql *MySQLStorage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = mySql.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
		logging.Logger.Warnf("[TraceID=%s] | retrying SQL transaction after lock conflict (%d/%d)", contextutil.TraceIDFromContext(ctx), attempt, txAttempts)
	}
	return err
}

func (mySql *MySQLStorage) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start SQL transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit SQL transaction: %w", err)
	}
	return nil
}

func (mySql *MySQLStorage) SaveTransaction(ctx context.Context, t budget.Transaction) error {
	err := mySql.inTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO transaction (id, user_id, amount, description, date, category, category_icon, type, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
		_, err := tx.ExecContext(ctx, query, t.ID, t.UserID, t.Amount, t.Description, t.Date.Format(dbDate), t.Category, t.CategoryIcon, string(t.Type), t.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		return applyRollup(ctx, tx, budget.RollupFor(t, 1))
	})
	if err != nil {
		if isDuplicateKey(err) {
			return appErrors.NewConflict("The transaction already exists.")
		}
		return internalError(ctx, "SaveTransaction", "save transaction", err, "Failed to save transaction, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) DeleteTransaction(ctx context.Context, userID string, id string) (budget.Transaction, error) {
	var deleted budget.Transaction

	err := mySql.inTx(ctx, func(tx *sql.Tx) error {
		query := `SELECT id, user_id, amount, description, date, category, category_icon, type, created_at
			FROM transaction WHERE id = ? AND user_id = ? FOR UPDATE;`
		var row dbTransaction
		err := tx.QueryRowContext(ctx, query, id, userID).Scan(
			&row.ID, &row.UserID, &row.Amount, &row.Description, &row.Date,
			&row.Category, &row.CategoryIcon, &row.Type, &row.CreatedAt,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errTxNotFound
			}
			return fmt.Errorf("lock transaction: %w", err)
		}
		deleted = row.toTransaction()

		if _, err := tx.ExecContext(ctx, "DELETE FROM transaction WHERE id = ? AND user_id = ?;", id, userID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return applyRollup(ctx, tx, budget.RollupFor(deleted, -1))
	})
	if err != nil {
		if errors.Is(err, errTxNotFound) {
			return budget.Transaction{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "The transaction does not exist.",
			}
		}
		return budget.Transaction{}, internalError(ctx, "DeleteTransaction", "delete transaction", err, "Failed to delete transaction, try again later.")
	}
	return deleted, nil
}

func (mySql *MySQLStorage) ListTransactions(ctx context.Context, userID string, r budget.DateRange) ([]budget.Transaction, error) {
	query := `SELECT id, user_id, amount, description, date, category, category_icon, type, created_at
		FROM transaction WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date DESC, created_at DESC;`

	rows, err := mySql.db.QueryContext(ctx, query, userID, r.From.Format(dbDate), r.To.Format(dbDate))
	if err != nil {
		return nil, internalError(ctx, "ListTransactions", "query transactions", err, "Failed to get transactions, try again later.")
	}
	defer rows.Close()

	transactions := []budget.Transaction{}
	for rows.Next() {
		var row dbTransaction
		err := rows.Scan(
			&row.ID, &row.UserID, &row.Amount, &row.Description, &row.Date,
			&row.Category, &row.CategoryIcon, &row.Type, &row.CreatedAt,
		)
		if err != nil {
			return nil, internalError(ctx, "ListTransactions", "scan transaction row", err, "Failed to process transactions, try again later.")
		}
		transactions = append(transactions, row.toTransaction())
	}
	if err := rows.Err(); err != nil {
		return nil, internalError(ctx, "ListTransactions", "iterate transaction rows", err, "Failed to process transactions, try again later.")
	}
	return transactions, nil
}

// --- STATISTICS --- //

func (mySql *MySQLStorage) GetBalanceStats(ctx context.Context, userID string, r budget.DateRange) (budget.BalanceStats, error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN type = 'income' THEN amount END), 0),
		COALESCE(SUM(CASE WHEN type = 'expense' THEN amount END), 0)
		FROM transaction WHERE user_id = ? AND date BETWEEN ? AND ?;`

	var stats budget.BalanceStats
	err := mySql.db.QueryRowContext(ctx, query, userID, r.From.Format(dbDate), r.To.Format(dbDate)).Scan(&stats.Income, &stats.Expense)
	if err != nil {
		return budget.BalanceStats{}, internalError(ctx, "GetBalanceStats", "get balance stats", err, "Failed to get statistics, try again later.")
	}
	return stats, nil
}

func (mySql *MySQLStorage) GetCategoryStats(ctx context.Context, userID string, r budget.DateRange) ([]budget.CategoryStat, error) {
	query := `SELECT type, category, category_icon, SUM(amount) AS total
		FROM transaction WHERE user_id = ? AND date BETWEEN ? AND ?
		GROUP BY type, category, category_icon
		ORDER BY total DESC;`

	rows, err := mySql.db.QueryContext(ctx, query, userID, r.From.Format(dbDate), r.To.Format(dbDate))
	if err != nil {
		return nil, internalError(ctx, "GetCategoryStats", "query category stats", err, "Failed to get statistics, try again later.")
	}
	defer rows.Close()

	stats := []budget.CategoryStat{}
	for rows.Next() {
		var (
			s     budget.CategoryStat
			sType string
		)
		if err := rows.Scan(&sType, &s.Category, &s.CategoryIcon, &s.Sum); err != nil {
			return nil, internalError(ctx, "GetCategoryStats", "scan category stats row", err, "Failed to get statistics, try again later.")
		}
		s.Type = budget.TransactionType(sType)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError(ctx, "GetCategoryStats", "iterate category stats rows", err, "Failed to get statistics, try again later.")
	}
	return stats, nil
}

func (mySql *MySQLStorage) GetYearHistory(ctx context.Context, userID string, year int) ([]budget.HistoryRow, error) {
	query := "SELECT year, month, 0, income, expense FROM year_history WHERE user_id = ? AND year = ? ORDER BY month;"
	return mySql.queryHistory(ctx, "GetYearHistory", query, userID, year)
}

func (mySql *MySQLStorage) GetMonthHistory(ctx context.Context, userID string, p budget.Period) ([]budget.HistoryRow, error) {
	query := "SELECT year, month, day, income, expense FROM month_history WHERE user_id = ? AND year = ? AND month = ? ORDER BY day;"
	return mySql.queryHistory(ctx, "GetMonthHistory", query, userID, p.Year, p.Month)
}

func (mySql *MySQLStorage) queryHistory(ctx context.Context, fn string, query string, args ...interface{}) ([]budget.HistoryRow, error) {
	rows, err := mySql.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, internalError(ctx, fn, "query history", err, "Failed to get history, try again later.")
	}
	defer rows.Close()

	history := []budget.HistoryRow{}
	for rows.Next() {
		var h budget.HistoryRow
		if err := rows.Scan(&h.Year, &h.Month, &h.Day, &h.Income, &h.Expense); err != nil {
			return nil, internalError(ctx, fn, "scan history row", err, "Failed to get history, try again later.")
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError(ctx, fn, "iterate history rows", err, "Failed to get history, try again later.")
	}
	return history, nil
}

func (mySql *MySQLStorage) GetHistoryYears(ctx context.Context, userID string) ([]int, error) {
	query := "SELECT DISTINCT year FROM month_history WHERE user_id = ? ORDER BY year;"

	rows, err := mySql.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, internalError(ctx, "GetHistoryYears", "query history years", err, "Failed to get history periods, try again later.")
	}
	defer rows.Close()

	years := []int{}
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, internalError(ctx, "GetHistoryYears", "scan history year", err, "Failed to get history periods, try again later.")
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError(ctx, "GetHistoryYears", "iterate history years", err, "Failed to get history periods, try again later.")
	}
	return years, nil
}

// --- SESSIONS --- //

func (mySql *MySQLStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	query := `SELECT id, token, created_at, expire_at, user_id FROM session WHERE token = ?;`

	var dbS dbSession
	err := mySql.db.QueryRowContext(ctx, query, strings.TrimSpace(token)).Scan(
		&dbS.ID,
		&dbS.Token,
		&dbS.CreatedAt,
		&dbS.ExpireAt,
		&dbS.UserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Session{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrAuth,
				Message: "Session does not exist, please login.",
			}
		}
		return auth.Session{}, internalError(ctx, "GetSessionByToken", "get session", err, "Failed to check session, please try again later.")
	}
	return dbS.toSession(), nil
}

func (mySql *MySQLStorage) UpdateSessionExpiry(ctx context.Context, sessionID string, expireAt time.Time) error {
	query := `UPDATE session SET expire_at = ? WHERE id = ?;`
	res, err := mySql.db.ExecContext(ctx, query, expireAt.UTC(), sessionID)
	if err != nil {
		return internalError(ctx, "UpdateSessionExpiry", "update session", err, "Failed to check session, please try again later.")
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return internalError(ctx, "UpdateSessionExpiry", "check affected rows", err, "Failed to check session, please try again later.")
	}
	if rowsAffected == 0 {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	return nil
}

// SaveSession is used by integration tests and local seeding; sessions are
// normally issued by the identity provider.
func (mySql *MySQLStorage) SaveSession(ctx context.Context, session auth.Session) error {
	query := "INSERT INTO session (id, token, created_at, expire_at, user_id) VALUES (?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, session.ID, session.Token, session.CreatedAt.UTC(), session.ExpireAt.UTC(), session.UserID)
	if err != nil {
		if isDuplicateKey(err) {
			return appErrors.NewConflict("The session already exists.")
		}
		return internalError(ctx, "SaveSession", "save session", err, "Failed to save session, try again later.")
	}
	return nil
}

var (
	_ budget.Storage    = (*MySQLStorage)(nil)
	_ auth.SessionStore = (*MySQLStorage)(nil)
)
