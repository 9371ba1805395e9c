// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/wanderly/internal/platform/migration"
)

func TestPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/wanderly":   "pgx5://u:p@db:5432/wanderly",
		"postgresql://u:p@db:5432/wanderly": "pgx5://u:p@db:5432/wanderly",
		"pgx5://u:p@db:5432/wanderly":       "pgx5://u:p@db:5432/wanderly",
		"host=db user=u":                    "host=db user=u",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, migration.Pgx5DSN(input), input)
	}
}
