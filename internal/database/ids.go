package database

import "fmt"

// queryIDs runs a single-column integer query and collects the results.
func (db *DB) queryIDs(query string) ([]int64, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ids: %w", err)
	}

	return ids, nil
}

// ActivityIDs returns every id in the activities table, in insertion order.
func (db *DB) ActivityIDs() ([]int64, error) {
	return db.queryIDs("SELECT id FROM activities")
}

// GearIDs returns every gear_id in the gear table.
func (db *DB) GearIDs() ([]string, error) {
	rows, err := db.conn.Query("SELECT gear_id FROM gear")
	if err != nil {
		return nil, fmt.Errorf("failed to query gear ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan gear id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gear ids: %w", err)
	}

	return ids, nil
}

// HealthDates returns every date already present in the health table.
func (db *DB) HealthDates() ([]string, error) {
	rows, err := db.conn.Query("SELECT date FROM health")
	if err != nil {
		return nil, fmt.Errorf("failed to query health dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan health date: %w", err)
		}
		dates = append(dates, date)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating health dates: %w", err)
	}

	return dates, nil
}

// RowCount returns the number of rows in an allow-listed table.
func (db *DB) RowCount(table string) (int64, error) {
	if err := ValidateTable(table); err != nil {
		return 0, err
	}

	var count int64
	err := db.conn.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}
