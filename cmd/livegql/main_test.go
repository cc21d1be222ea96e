package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livegql/livegql/internal/livedata"
)

func TestRun_CommandDispatch(t *testing.T) {
	require.Error(t, run(nil), "missing command")
	require.Error(t, run([]string{"frobnicate"}), "unknown command")
	require.NoError(t, run([]string{"help"}))
	require.NoError(t, run([]string{"help", "serve"}))
	require.Error(t, run([]string{"help", "frobnicate"}))
}

func TestCmdCheck(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.graphql")
	require.NoError(t, os.WriteFile(good, []byte(`type Query { a: String }`), 0o644))
	require.NoError(t, cmdCheck([]string{"-schema", good}))

	bad := filepath.Join(dir, "bad.graphql")
	require.NoError(t, os.WriteFile(bad, []byte(`type {`), 0o644))
	require.Error(t, cmdCheck([]string{"-schema", bad}))

	require.Error(t, cmdCheck(nil), "-schema is required")
}

func TestBuildSchema_BindsQueryFieldsToWatchedData(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"greeting": "hi"}`), 0o644))

	w, err := livedata.Watch(dataPath)
	require.NoError(t, err)
	defer w.Close()

	sch, err := buildSchema(`type Query { greeting: String missing: Int }`, w)
	require.NoError(t, err)

	for _, name := range []string{"greeting", "missing"} {
		f := sch.GetQueryType().Field(name)
		require.NotNil(t, f, name)
		require.NotNil(t, f.Resolver, "every query field gets a live resolver")
	}

	v, err := sch.GetQueryType().Field("greeting").Resolver(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, v, "resolver returns the field's live stream")
}
