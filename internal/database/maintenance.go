package database

import "fmt"

// Manual maintenance operations. None of these are ever called by the
// sync flow; they back the confirmation-gated CLI commands.

// DropTable drops an allow-listed table.
func (db *DB) DropTable(table string) error {
	if err := ValidateTable(table); err != nil {
		return err
	}

	_, err := db.conn.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
	if err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// DeleteLastRow deletes the row with the highest id from an allow-listed
// table. Used to roll back the most recent activity from cache and
// activities together.
func (db *DB) DeleteLastRow(table string) error {
	if err := ValidateTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf(
		"DELETE FROM %s WHERE id = (SELECT id FROM %s ORDER BY id DESC LIMIT 1)",
		table, table,
	)
	if _, err := db.conn.Exec(query); err != nil {
		return fmt.Errorf("failed to delete last row from %s: %w", table, err)
	}
	return nil
}
