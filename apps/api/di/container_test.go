package di

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/examcenter/backend/apps/api/echo"
	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/testdate"
	blobsvc "github.com/examcenter/backend/services/blob"
	"github.com/examcenter/backend/storage/cache"
)

func TestNew_InMemory(t *testing.T) {
	t.Setenv("ENV", "TEST")

	err := New().Invoke(func(
		conf *core.Config,
		db *sqlx.DB,
		calCache testdate.Cache,
		blobs core.BlobStore,
		server *echoapi.Server,
	) {
		assert.True(t, conf.Database.UseInMemory())
		assert.Nil(t, db)
		assert.IsType(t, &cache.MemoryCache{}, calCache)
		assert.IsType(t, &blobsvc.ConsoleStore{}, blobs)
		assert.NotNil(t, server)
	})
	require.NoError(t, err)
}
