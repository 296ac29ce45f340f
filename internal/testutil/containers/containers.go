// containers.go
//
// Check-in and profile service for Jurado's Burger locations
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jurados-presence.
// jurados-presence is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jurados-presence is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jurados-presence.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package containers starts the backing services with testcontainers. It is
// used by the opt-in integration tests and by the standalone testcontainers
// command. Settings come from the environment, with defaults.
package containers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbNetworkName    = "db"
	authzNetworkName = "authorizer"
	serviceImage     = "jurados-presence:latest"

	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

// Options selects which services to start
type Options struct {
	Authorizer bool
	Service    bool
}

// TestContainers holds the running services
type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	RedisContainer      testcontainers.Container
	MinioContainer      testcontainers.Container
	AuthorizerContainer testcontainers.Container
	ServiceContainer    testcontainers.Container

	// Env holds host-reachable settings for a locally run service
	Env map[string]string
}

// Terminate stops every started container and removes the network
func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]testcontainers.Container{
		"service":    tc.ServiceContainer,
		"authorizer": tc.AuthorizerContainer,
		"minio":      tc.MinioContainer,
		"redis":      tc.RedisContainer,
		"database":   tc.DBContainer,
	} {
		if c == nil {
			continue
		}
		if err := c.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate %s: %v", name, err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// Start creates the database, redis and minio containers, plus the
// authorizer and the service itself when requested. With a nil t, failures
// exit the process.
func Start(t *testing.T, opts Options) *TestContainers {
	ctx := context.Background()
	tc := &TestContainers{Env: make(map[string]string)}

	fail := func(err error, msg string) {
		tc.Terminate(t)
		exitWithError(t, err, msg)
	}

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	tc.Network = nw

	if err := tc.startDB(ctx, t); err != nil {
		fail(err, "Failed to start database")
	}
	if err := tc.startRedis(ctx); err != nil {
		fail(err, "Failed to start redis")
	}
	if err := tc.startMinio(ctx); err != nil {
		fail(err, "Failed to start minio")
	}
	if opts.Authorizer {
		if err := tc.startAuthorizer(ctx, t); err != nil {
			fail(err, "Failed to start authorizer")
		}
	}
	if opts.Service {
		if err := tc.startService(ctx, t); err != nil {
			fail(err, "Failed to start service")
		}
	}

	for k, v := range tc.Env {
		logMessage(t, "%s=%s", k, v)
	}
	return tc
}

func (tc *TestContainers) startDB(ctx context.Context, t *testing.T) error {
	dbPort, err := nat.NewPort("tcp", getEnv("DB_PORT", "3306"))
	if err != nil {
		return err
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("DB_IMAGE", "mariadb:11"),
			ExposedPorts: []string{string(dbPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": getEnv("DB_ROOT_PASSWORD", "rootpass"),
				"MYSQL_DATABASE":      getEnv("DB_APP_DATABASE", "jurados"),
				"MYSQL_USER":          getEnv("DB_APP_USER", "jurados_app"),
				"MYSQL_PASSWORD":      getEnv("DB_APP_PASSWORD", "apppass"),
			},
			WaitingFor: wait.ForListeningPort(dbPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {dbNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.DBContainer = c

	host, _ := c.Host(ctx)
	mapped, err := c.MappedPort(ctx, dbPort)
	if err != nil {
		return err
	}
	if err := initMySQL(t, host, mapped); err != nil {
		return err
	}

	tc.Env["DB_TYPE"] = "mysql"
	tc.Env["DB_HOST"] = host
	tc.Env["DB_PORT"] = mapped.Port()
	tc.Env["DB_APP_DATABASE"] = getEnv("DB_APP_DATABASE", "jurados")
	tc.Env["DB_APP_USER"] = getEnv("DB_APP_USER", "jurados_app")
	tc.Env["DB_APP_PASSWORD"] = getEnv("DB_APP_PASSWORD", "apppass")
	tc.Env["DB_USER"] = getEnv("DB_USER", "jurados_user")
	tc.Env["DB_PASSWORD"] = getEnv("DB_PASSWORD", "userpass")
	return nil
}

// initMySQL creates the user-pool account and the authorizer database
func initMySQL(t *testing.T, host string, port nat.Port) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", getEnv("DB_ROOT_PASSWORD", "rootpass"), host, port.Port()))
	if err != nil {
		return fmt.Errorf("connect for setup: %w", err)
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	appDB := getEnv("DB_APP_DATABASE", "jurados")
	user := getEnv("DB_USER", "jurados_user")
	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", appDB),
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", getEnv("AUTHZ_DATABASE", "authorizer")),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", user, getEnv("DB_PASSWORD", "userpass")),
		fmt.Sprintf("GRANT SELECT, INSERT, UPDATE, DELETE ON %s.* TO '%s'@'%%'", appDB, user),
		"FLUSH PRIVILEGES",
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w : when executing > %s", err, stmt)
		}
	}
	logMessage(t, "Initialized database %s", appDB)
	return nil
}

func (tc *TestContainers) startRedis(ctx context.Context) error {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("REDIS_IMAGE", "redis:7-alpine"),
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			Networks:     []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {"redis"},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.RedisContainer = c

	host, _ := c.Host(ctx)
	port, err := c.MappedPort(ctx, "6379")
	if err != nil {
		return err
	}
	tc.Env["REDIS_URL"] = fmt.Sprintf("redis://%s:%s/0", host, port.Port())
	return nil
}

func (tc *TestContainers) startMinio(ctx context.Context) error {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("MINIO_IMAGE", "minio/minio:latest"),
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
			Networks:   []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {"minio"},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.MinioContainer = c

	host, _ := c.Host(ctx)
	port, err := c.MappedPort(ctx, "9000")
	if err != nil {
		return err
	}
	tc.Env["ASSET_STORE"] = "s3"
	tc.Env["S3_ENDPOINT"] = fmt.Sprintf("%s:%s", host, port.Port())
	tc.Env["S3_ACCESS_KEY"] = minioUser
	tc.Env["S3_SECRET_KEY"] = minioPassword
	return nil
}

func (tc *TestContainers) startAuthorizer(ctx context.Context, t *testing.T) error {
	authzPort, err := nat.NewPort("tcp", getEnv("AUTHZ_PORT", "8080"))
	if err != nil {
		return err
	}

	authzLogLevel := "info"
	if os.Getenv("DEBUG_CONTAINER") == "true" {
		authzLogLevel = "debug"
	}
	dbConnection := fmt.Sprintf("root:%s@tcp(%s:%s)/%s",
		getEnv("DB_ROOT_PASSWORD", "rootpass"), dbNetworkName, getEnv("DB_PORT", "3306"), getEnv("AUTHZ_DATABASE", "authorizer"))

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(authzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     getEnv("AUTHZ_CLIENT_ID", "jurados"),
				"PORT":          authzPort.Port(),
				"DATABASE_TYPE": "mariadb",
				"DATABASE_NAME": getEnv("AUTHZ_DATABASE", "authorizer"),
				"DATABASE_URL":  dbConnection,
				"ADMIN_SECRET":  getEnv("AUTHZ_ADMIN_SECRET", "admin"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     authzLogLevel,
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {authzNetworkName},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.AuthorizerContainer = c

	host, _ := c.Host(ctx)
	port, err := c.MappedPort(ctx, authzPort)
	if err != nil {
		return err
	}
	tc.Env["AUTHZ_URL"] = fmt.Sprintf("http://%s:%s", host, port.Port())
	tc.Env["AUTHZ_CLIENT_ID"] = getEnv("AUTHZ_CLIENT_ID", "jurados")
	logMessage(t, "Authorizer started")
	return nil
}

// startService runs a prebuilt service image against the containers
func (tc *TestContainers) startService(ctx context.Context, t *testing.T) error {
	exists, err := imageExists(ctx, serviceImage)
	if err != nil {
		return fmt.Errorf("check image: %w", err)
	}
	if !exists {
		return fmt.Errorf("image %s not found, build it first", serviceImage)
	}

	servicePort, err := nat.NewPort("tcp", getEnv("PORT", "3000"))
	if err != nil {
		return err
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        serviceImage,
			ExposedPorts: []string{string(servicePort)},
			Env: map[string]string{
				"DB_TYPE":         "mysql",
				"DB_HOST":         dbNetworkName,
				"DB_PORT":         getEnv("DB_PORT", "3306"),
				"DB_APP_DATABASE": tc.Env["DB_APP_DATABASE"],
				"DB_APP_USER":     tc.Env["DB_APP_USER"],
				"DB_APP_PASSWORD": tc.Env["DB_APP_PASSWORD"],
				"DB_USER":         tc.Env["DB_USER"],
				"DB_PASSWORD":     tc.Env["DB_PASSWORD"],
				"AUTHZ_URL":       fmt.Sprintf("http://%s:%s", authzNetworkName, getEnv("AUTHZ_PORT", "8080")),
				"AUTHZ_CLIENT_ID": getEnv("AUTHZ_CLIENT_ID", "jurados"),
				"REDIS_URL":       "redis://redis:6379/0",
				"ASSET_STORE":     "s3",
				"S3_ENDPOINT":     "minio:9000",
				"S3_ACCESS_KEY":   minioUser,
				"S3_SECRET_KEY":   minioPassword,
				"SEED_LOCATIONS":  "true",
				"PORT":            servicePort.Port(),
			},
			WaitingFor: wait.ForHTTP("/metrics").WithPort(servicePort).WithStartupTimeout(30 * time.Second),
			Networks:   []string{tc.Network.Name},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.ServiceContainer = c

	host, _ := c.Host(ctx)
	port, err := c.MappedPort(ctx, servicePort)
	if err != nil {
		return err
	}
	tc.Env["BASE_URL"] = fmt.Sprintf("http://%s:%s", host, port.Port())
	logMessage(t, "Service container started successfully")
	return nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
