package cassandra

import (
	"io"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/require"
)

func TestParseConsistency(t *testing.T) {
	require.Equal(t, gocql.One, ParseConsistency("ONE"))
	require.Equal(t, gocql.LocalQuorum, ParseConsistency(" local_quorum "))
	require.Equal(t, gocql.Quorum, ParseConsistency("bogus"))
}

func TestNewCluster(t *testing.T) {
	cluster := NewCluster(configloader.CassandraConfig{
		Hosts:       []string{"10.0.0.1", "10.0.0.2"},
		Keyspace:    "lectures",
		Consistency: "one",
		Timeout:     3 * time.Second,
	})
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cluster.Hosts)
	require.Equal(t, "lectures", cluster.Keyspace)
	require.Equal(t, gocql.One, cluster.Consistency)
	require.Equal(t, 3*time.Second, cluster.ConnectTimeout)
}

func TestProvideSessionDisabled(t *testing.T) {
	session, cleanup, err := ProvideSession(configloader.CassandraConfig{}, log.NewStdLogger(io.Discard))
	require.NoError(t, err)
	require.Nil(t, session)
	cleanup()
}
