package consensus

import (
	"io/ioutil"
	"testing"

	"github.com/cobaltnet/cobaltd/domain/dagconfig"
	"github.com/cobaltnet/cobaltd/domain/prefixmanager/prefix"
	"github.com/cobaltnet/cobaltd/infrastructure/db/database/ldb"
)

func TestNewConsensus(t *testing.T) {
	f := NewFactory()

	config := &Config{Params: dagconfig.DevnetParams}

	tmpDir, err := ioutil.TempDir("", "TestNewConsensus")
	if err != nil {
		return
	}

	db, err := ldb.NewLevelDB(tmpDir, 8)
	if err != nil {
		t.Fatalf("error in NewLevelDB: %s", err)
	}

	_, err = f.NewConsensus(config, db, &prefix.Prefix{}, nil)
	if err != nil {
		t.Fatalf("error in NewConsensus: %+v", err)
	}
}
