package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	sconf "github.com/hubcluster/hubcluster/pkg/configs/server"
	"github.com/hubcluster/hubcluster/pkg/domain/auth"
	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster"
	"github.com/hubcluster/hubcluster/pkg/utils/filewatch"
)

func main() {

	pconfig := flag.String(
		"config", os.Getenv("HUBCLUSTER_CONFIG"), "path to config file",
	)
	schemaRepo := flag.String("schema-repo", os.Getenv("HUBCLUSTER_SCHEMA"), "schema repository path")
	loglevel := flag.String("loglevel", "warn", "log level. debug|info|warn|error|off")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancel()

	conf, err := sconf.LoadServerConfig(*pconfig)
	if err != nil {
		panic(err)
	}

	// A config edit stops the daemon. The supervisor restarts it with
	// the new configuration.
	{
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			panic(err)
		}
		defer wcancel()
		ctx = wctx
	}

	cluster, err := hubcluster.Default(
		ctx, conf.Cluster(),
		hubcluster.WithSchemaRepository(*schemaRepo),
	)
	if err != nil {
		panic(err)
	}
	defer cluster.Close()

	{
		sctx, scancel := cluster.Schema().Database().Context(ctx)
		defer scancel()
		ctx = sctx
	}

	authenticator := auth.New(conf.Auth(), cluster.User().Database())

	server := BuildServer(cluster, authenticator, *loglevel)
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		if err := server.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && err != http.ErrServerClosed {
			ch <- err
			return
		}
		ch <- nil
	}()

	exit := 0
	select {
	case <-ctx.Done():
		if err := ctx.Err(); err != nil {
			server.Logger.Infof("context is done: %s (cause: %s)", err, context.Cause(ctx))
			exit = 1
		}
	case err := <-ch:
		if err != nil {
			server.Logger.Error("server stopped with error:", err)
			exit = 1
		}
	}

	server.Logger.Info("shutting down...")
	qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer qcancel()
	if err := server.Shutdown(qctx); err != nil {
		server.Logger.Fatalf("shutdown with error. %+v", err)
	}
	os.Exit(exit)
}
