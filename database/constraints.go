package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dinehall/comanda/utils"
)

// EnsureConstraints installs the storage-level guard for the one-open-session
// per-table invariant plus the change-log triggers consumed by
// services.ChangeMonitor. Runs after AutoMigrate; every statement is
// idempotent.
//
// The guard matters even though SessionService serializes get-or-open per
// table: with more than one process on the same database, the in-process
// lock covers nothing, and the rejected insert surfaces as a ConflictError.
func EnsureConstraints(db *gorm.DB) error {
	switch db.Dialector.Name() {
	case "sqlite":
		return ensureSQLite(db)
	case "mysql":
		return ensureMySQL(db)
	default:
		return fmt.Errorf("unsupported dialect %q", db.Dialector.Name())
	}
}

func ensureSQLite(db *gorm.DB) error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_open
		 ON sessions(table_id) WHERE status = 'open'`,
	}

	for _, table := range []string{"tables", "sessions", "orders"} {
		statements = append(statements,
			fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS trg_%s_insert AFTER INSERT ON %s
			 BEGIN
			   INSERT INTO db_changes(table_name, record_id, action_type, changed_at, processed)
			   VALUES ('%s', NEW.id, 'INSERT', CURRENT_TIMESTAMP, 0);
			 END`, table, table, table),
			fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS trg_%s_update AFTER UPDATE ON %s
			 BEGIN
			   INSERT INTO db_changes(table_name, record_id, action_type, changed_at, processed)
			   VALUES ('%s', NEW.id, 'UPDATE', CURRENT_TIMESTAMP, 0);
			 END`, table, table, table),
		)
	}

	// Only tables are ever deleted; sessions and orders are history.
	statements = append(statements,
		`CREATE TRIGGER IF NOT EXISTS trg_tables_delete AFTER DELETE ON tables
		 BEGIN
		   INSERT INTO db_changes(table_name, record_id, action_type, changed_at, processed)
		   VALUES ('tables', OLD.id, 'DELETE', CURRENT_TIMESTAMP, 0);
		 END`,
	)

	return execAll(db, statements)
}

func ensureMySQL(db *gorm.DB) error {
	statements := []string{
		`DROP TRIGGER IF EXISTS trg_sessions_one_open`,
		`CREATE TRIGGER trg_sessions_one_open BEFORE INSERT ON sessions
		 FOR EACH ROW
		 BEGIN
		   IF NEW.status = 'open' AND EXISTS (
		     SELECT 1 FROM sessions WHERE table_id = NEW.table_id AND status = 'open'
		   ) THEN
		     SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'duplicate open session for table';
		   END IF;
		 END`,
	}

	for _, table := range []string{"tables", "sessions", "orders"} {
		statements = append(statements,
			fmt.Sprintf(`DROP TRIGGER IF EXISTS trg_%s_insert`, table),
			fmt.Sprintf(`CREATE TRIGGER trg_%s_insert AFTER INSERT ON %s
			 FOR EACH ROW
			 BEGIN
			   INSERT INTO db_changes(table_name, record_id, action_type, changed_at, processed)
			   VALUES ('%s', NEW.id, 'INSERT', NOW(), 0);
			 END`, table, table, table),
			fmt.Sprintf(`DROP TRIGGER IF EXISTS trg_%s_update`, table),
			fmt.Sprintf(`CREATE TRIGGER trg_%s_update AFTER UPDATE ON %s
			 FOR EACH ROW
			 BEGIN
			   INSERT INTO db_changes(table_name, record_id, action_type, changed_at, processed)
			   VALUES ('%s', NEW.id, 'UPDATE', NOW(), 0);
			 END`, table, table, table),
		)
	}

	statements = append(statements,
		`DROP TRIGGER IF EXISTS trg_tables_delete`,
		`CREATE TRIGGER trg_tables_delete AFTER DELETE ON tables
		 FOR EACH ROW
		 BEGIN
		   INSERT INTO db_changes(table_name, record_id, action_type, changed_at, processed)
		   VALUES ('tables', OLD.id, 'DELETE', NOW(), 0);
		 END`,
	)

	return execAll(db, statements)
}

func execAll(db *gorm.DB, statements []string) error {
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error executing constraint statement: %v", err)
			return err
		}
	}
	utils.InfoLogger.Printf("Database constraints and triggers ensured")
	return nil
}
