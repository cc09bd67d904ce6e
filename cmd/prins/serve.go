package main

import (
	"crypto/rand"
	"log"
	"net/http"
	"os"

	"github.com/dekarrin/prins/internal/api"
	"github.com/dekarrin/prins/internal/complearner"
	"github.com/dekarrin/prins/internal/store"
	"github.com/dekarrin/prins/internal/version"
	"github.com/spf13/pflag"
)

const envSecret = "PRINS_TOKEN_SECRET"

func runServe(args []string) {
	fs := pflag.NewFlagSet("serve", pflag.ExitOnError)
	cf := bindCommonFlags(fs)
	listen := fs.StringP("listen", "l", "localhost:8080", "Address to listen on.")
	secretFlag := fs.StringP("secret", "s", "", "Secret for signing JWT bearer tokens.")
	learnerPath := fs.String("learner", "", "Path to the external CompLearner binary.")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("FATAL %v", err)
	}

	secretStr := os.Getenv(envSecret)
	if fs.Lookup("secret").Changed {
		secretStr = *secretFlag
	}

	var secret []byte
	if secretStr != "" {
		secret = []byte(secretStr)
		for len(secret) < 32 {
			doubled := make([]byte, len(secret)*2)
			copy(doubled, secret)
			copy(doubled[len(secret):], secret)
			secret = doubled
		}
	} else {
		secret = make([]byte, 64)
		if _, err := rand.Read(secret); err != nil {
			log.Fatalf("FATAL could not generate token secret: %v", err)
		}
		log.Printf("WARN  Using generated token secret; all tokens issued will become invalid at shutdown")
	}

	st, err := store.NewSQLiteStore(cf.dbPath)
	if err != nil {
		log.Fatalf("FATAL could not open run store: %v", err)
	}
	defer st.Close()

	a := &api.API{
		Runs:    st,
		Learner: &complearner.ProcessLearner{BinaryPath: *learnerPath},
		Secret:  secret,
	}

	log.Printf("INFO  Starting prins server %s on %s...", version.Current, *listen)
	if err := http.ListenAndServe(*listen, a.Router()); err != nil {
		log.Fatalf("FATAL %v", err)
	}
}
