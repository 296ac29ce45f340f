package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/jurados-presence/internal/testutil/containers"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var withAuthorizer bool
	flag.BoolVar(&withAuthorizer, "authz", true, "start the authorizer container")
	var withService bool
	flag.BoolVar(&withService, "service", false, "start the jurados-presence:latest image")
	flag.Parse()

	usage := `
Run the jurados-presence backing services (MariaDB, redis, minio, authorizer)
with testcontainers, using the environment variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-authz=false] [-service]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env -service
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	started := make(chan *containers.TestContainers, 1)
	go func() {
		started <- containers.Start(nil, containers.Options{Authorizer: withAuthorizer, Service: withService})
	}()

	var tc *containers.TestContainers
	select {
	case tc = <-started:
		log.Println("Containers running, press Ctrl+C to stop")
		<-sigs
	case sig := <-sigs:
		log.Printf("Received signal: %v before startup finished\n", sig)
		tc = <-started
	}

	log.Println("Terminating test containers...")
	tc.Terminate(nil)
}
