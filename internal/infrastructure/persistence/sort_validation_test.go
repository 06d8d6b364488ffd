package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "ASC", ValidateSortOrder(" ASC "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
	assert.Equal(t, "DESC", ValidateSortOrder("sideways"))
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "stage", ValidateSortField("stage", OpportunitySortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", OpportunitySortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password; DROP TABLE", OpportunitySortFields, "created_at"))
	assert.Equal(t, "name", ValidateSortField("name", ContactSortFields, "created_at"))
}
