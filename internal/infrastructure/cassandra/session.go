// Package cassandra 建立转写归档使用的 gocql 会话。
package cassandra

import (
	"fmt"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gocql/gocql"
)

// ParseConsistency 解析一致性级别，未知值回退到 QUORUM。
func ParseConsistency(raw string) gocql.Consistency {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "one":
		return gocql.One
	case "local_one":
		return gocql.LocalOne
	case "local_quorum":
		return gocql.LocalQuorum
	case "all":
		return gocql.All
	default:
		return gocql.Quorum
	}
}

// NewCluster 按配置构造集群参数。
func NewCluster(cfg configloader.CassandraConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = ParseConsistency(cfg.Consistency)
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.Timeout
	return cluster
}

// ProvideSession 未配置 hosts/keyspace 时返回 nil 会话，归档随之关闭。
func ProvideSession(cfg configloader.CassandraConfig, logger log.Logger) (*gocql.Session, func(), error) {
	helper := log.NewHelper(logger)
	if !cfg.Enabled() {
		helper.Info("cassandra transcript archive disabled")
		return nil, func() {}, nil
	}
	session, err := NewCluster(cfg).CreateSession()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Cassandra: %w", err)
	}
	helper.Infof("cassandra connected: hosts=%v keyspace=%s", cfg.Hosts, cfg.Keyspace)
	return session, session.Close, nil
}
