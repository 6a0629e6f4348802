package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// mustEnv runs a command that must succeed and must print a JSON envelope.
func mustEnv(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: warroom %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data to be an object; got %T: %#v", env["data"], env["data"])
	}
	return m
}

func TestWorksheetLifecycle(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	// init creates the worksheet and makes it current.
	initEnv := mustEnv(t, "--dir", dir, "init", "payments-outage")
	if got := dataMap(t, initEnv)["worksheet"]; got != "payments-outage" {
		t.Fatalf("init worksheet = %v", got)
	}

	// Intake fields.
	mustEnv(t, "--dir", dir, "set", "pre.oneLine", "Payments API 5xx spike")
	mustEnv(t, "--dir", dir, "set", "pre.symptoms", "5xx rate 12% on POST /charge")
	mustEnv(t, "--dir", dir, "set", "impact.now", "~400 failed charges/min")
	mustEnv(t, "--dir", dir, "set", "ops.severity", "P1")
	mustEnv(t, "--dir", dir, "set", "ops.detectMonitoring", "yes")

	// Containment, comms.
	mustEnv(t, "--dir", dir, "contain", "stoppingImpact", "--summary", "failing over to secondary PSP")
	mustEnv(t, "--dir", dir, "comm", "add", "Incident opened, bridge live", "--type", "status")
	mustEnv(t, "--dir", dir, "comm", "cadence", "30")

	// Is/is-not table.
	mustEnv(t, "--dir", dir, "table", "add", "where", "--is", "eu-west-1", "--not", "us-east-1")
	mustEnv(t, "--dir", dir, "table", "add", "when", "--is", "since 09:40 UTC")

	// Causes with findings.
	causeEnv := mustEnv(t, "--dir", dir, "causes", "add", "PSP certificate expiry",
		"--accusation", "rejects TLS handshakes",
		"--impact", "all charges to primary PSP fail",
		"--confidence", "high")
	causeID, _ := dataMap(t, causeEnv)["id"].(string)
	if !strings.HasPrefix(causeID, "cause-") {
		t.Fatalf("causes add returned id %q", causeID)
	}
	mustEnv(t, "--dir", dir, "causes", "finding", causeID, "expiry date in cert matches onset", "--mode", "yes")
	mustEnv(t, "--dir", dir, "causes", "likely", causeID)

	showCause := mustEnv(t, "--dir", dir, "causes", "show", causeID)
	meta, _ := showCause["meta"].(map[string]any)
	if likely, _ := meta["likely"].(bool); !likely {
		t.Fatalf("cause %s not marked likely: %#v", causeID, showCause)
	}

	// Steps.
	stepEnv := mustEnv(t, "--dir", dir, "steps", "add", "verify cert chain on primary PSP endpoint")
	stepID, _ := dataMap(t, stepEnv)["id"].(string)
	checked := mustEnv(t, "--dir", dir, "steps", "check", stepID)
	if got, _ := dataMap(t, checked)["checked"].(bool); !got {
		t.Fatalf("steps check did not set checked: %#v", checked)
	}

	// Actions.
	actEnv := mustEnv(t, "--dir", dir, "actions", "add", "rotate PSP client cert", "--owner", "kim")
	actID, _ := dataMap(t, actEnv)["id"].(string)
	mustEnv(t, "--dir", dir, "actions", "done", actID)

	// Handover.
	mustEnv(t, "--dir", dir, "handover", "set", "summary", "Contained via PSP failover; fix in progress")

	// Full snapshot reflects all of it.
	show := mustEnv(t, "--dir", dir, "show")
	data := dataMap(t, show)
	pre, _ := data["pre"].(map[string]any)
	if pre["oneLine"] != "Payments API 5xx spike" {
		t.Fatalf("show pre.oneLine = %v", pre["oneLine"])
	}
	causes, _ := data["causes"].([]any)
	if len(causes) != 1 {
		t.Fatalf("show causes = %d, want 1", len(causes))
	}
	if data["likelyCauseId"] != causeID {
		t.Fatalf("show likelyCauseId = %v, want %s", data["likelyCauseId"], causeID)
	}
	ops, _ := data["ops"].(map[string]any)
	if ops["containStatus"] != "stoppingImpact" {
		t.Fatalf("show ops.containStatus = %v", ops["containStatus"])
	}
	if ops["detectMonitoring"] != true {
		t.Fatalf("show ops.detectMonitoring = %v", ops["detectMonitoring"])
	}

	// History recorded every save, newest first.
	hist := mustEnv(t, "--dir", dir, "history", "list", "--limit", "0")
	revs, _ := hist["data"].([]any)
	if len(revs) < 10 {
		t.Fatalf("history too short: %d revisions", len(revs))
	}
	newest, _ := revs[0].(map[string]any)
	if newest["reason"] != "handover set summary" {
		t.Fatalf("newest revision reason = %v", newest["reason"])
	}

	// Doctor finds nothing wrong.
	doc := mustEnv(t, "--dir", dir, "doctor")
	docMeta, _ := doc["meta"].(map[string]any)
	if docMeta["hasErrors"] != false {
		t.Fatalf("doctor reported errors: %#v", doc)
	}

	// Report carries the worksheet content.
	rawMD, stderr, err := runCLI(t, []string{"--dir", dir, "report", "--raw"})
	if err != nil {
		t.Fatalf("report --raw: %v\nstderr:\n%s", err, stderr)
	}
	for _, want := range []string{"# Payments API 5xx spike", "PSP certificate expiry", "(likely)", "[x] verify cert chain"} {
		if !strings.Contains(string(rawMD), want) {
			t.Fatalf("report missing %q:\n%s", want, rawMD)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "source-ws")
	mustEnv(t, "--dir", dir, "set", "pre.oneLine", "exported incident")
	mustEnv(t, "--dir", dir, "causes", "add", "flaky switch")

	exported, stderr, err := runCLI(t, []string{"--dir", dir, "export"})
	if err != nil {
		t.Fatalf("export: %v\nstderr:\n%s", err, stderr)
	}
	if !json.Valid(exported) {
		t.Fatalf("export is not valid JSON:\n%s", exported)
	}

	file := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(file, exported, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	imp := mustEnv(t, "--dir", dir, "--worksheet", "copy-ws", "import", file)
	if got := dataMap(t, imp)["worksheet"]; got != "copy-ws" {
		t.Fatalf("import worksheet = %v", got)
	}

	show := mustEnv(t, "--dir", dir, "--worksheet", "copy-ws", "show", "pre")
	pre := dataMap(t, show)
	if pre["oneLine"] != "exported incident" {
		t.Fatalf("imported pre.oneLine = %v", pre["oneLine"])
	}
}

func TestImportLegacySchemaUpgrades(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	// A pre-versioning export: no meta, flat containment field, causes
	// under the old key.
	legacy := `{
		"oneLine": "legacy export",
		"containment": "mitigation",
		"possibleCauses": [{"id": "cause-old1", "suspect": "bad GC tuning"}]
	}`
	file := filepath.Join(t.TempDir(), "legacy.json")
	if err := os.WriteFile(file, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	mustEnv(t, "--dir", dir, "--worksheet", "legacy-ws", "import", file)

	show := mustEnv(t, "--dir", dir, "--worksheet", "legacy-ws", "show")
	data := dataMap(t, show)
	meta, _ := data["meta"].(map[string]any)
	if meta["version"] != float64(1) {
		t.Fatalf("imported version = %v, want 1", meta["version"])
	}
	pre, _ := data["pre"].(map[string]any)
	if pre["oneLine"] != "legacy export" {
		t.Fatalf("imported pre.oneLine = %v", pre["oneLine"])
	}
	ops, _ := data["ops"].(map[string]any)
	if ops["containStatus"] != "stabilized" {
		t.Fatalf("legacy containment mapped to %v, want stabilized", ops["containStatus"])
	}
	causes, _ := data["causes"].([]any)
	if len(causes) != 1 {
		t.Fatalf("imported causes = %d, want 1", len(causes))
	}
}

func TestHistoryRestoreFlow(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "restore-ws")
	mustEnv(t, "--dir", dir, "set", "pre.oneLine", "first wording")
	mustEnv(t, "--dir", dir, "set", "pre.oneLine", "second wording")

	hist := mustEnv(t, "--dir", dir, "history", "list")
	revs, _ := hist["data"].([]any)
	if len(revs) != 3 {
		t.Fatalf("revisions = %d, want 3", len(revs))
	}
	// revs[1] is the "first wording" save.
	mid, _ := revs[1].(map[string]any)
	revID, _ := mid["id"].(string)

	shown := mustEnv(t, "--dir", dir, "history", "show", revID)
	pre, _ := dataMap(t, shown)["pre"].(map[string]any)
	if pre["oneLine"] != "first wording" {
		t.Fatalf("history show pre.oneLine = %v", pre["oneLine"])
	}

	mustEnv(t, "--dir", dir, "history", "restore", revID)
	cur := mustEnv(t, "--dir", dir, "show", "pre")
	if got := dataMap(t, cur)["oneLine"]; got != "first wording" {
		t.Fatalf("after restore oneLine = %v", got)
	}
}

func TestUseAndLs(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "alpha")
	mustEnv(t, "--dir", dir, "init", "beta", "--use=false")

	ls := mustEnv(t, "--dir", dir, "ls")
	rows, _ := ls["data"].([]any)
	if len(rows) != 2 {
		t.Fatalf("ls rows = %d, want 2", len(rows))
	}
	meta, _ := ls["meta"].(map[string]any)
	if meta["current"] != "alpha" {
		t.Fatalf("current = %v, want alpha", meta["current"])
	}

	mustEnv(t, "--dir", dir, "use", "beta")
	ls = mustEnv(t, "--dir", dir, "ls")
	meta, _ = ls["meta"].(map[string]any)
	if meta["current"] != "beta" {
		t.Fatalf("current after use = %v, want beta", meta["current"])
	}

	// Unknown worksheet is a hard error.
	if _, _, err := runCLI(t, []string{"--dir", dir, "use", "nope"}); err == nil {
		t.Fatalf("use nope succeeded")
	}
}

func TestInitFromTemplateModes(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "latency-ws", "--from", "checkout-latency", "--mode", "dc")
	show := mustEnv(t, "--dir", dir, "show")
	data := dataMap(t, show)

	causes, _ := data["causes"].([]any)
	if len(causes) == 0 {
		t.Fatalf("dc mode should keep template causes")
	}
	steps, _ := data["steps"].(map[string]any)
	items, _ := steps["items"].([]any)
	if len(items) != 0 {
		t.Fatalf("dc mode should zero steps, got %d", len(items))
	}

	// intake mode drops the table as well.
	mustEnv(t, "--dir", dir, "init", "intake-ws", "--from", "failed-deploy", "--mode", "intake", "--use=false")
	show = mustEnv(t, "--dir", dir, "--worksheet", "intake-ws", "show")
	data = dataMap(t, show)
	table, _ := data["table"].([]any)
	if len(table) != 0 {
		t.Fatalf("intake mode should zero the table, got %d rows", len(table))
	}

	// failed-deploy opts out of the dc projection.
	if _, _, err := runCLI(t, []string{"--dir", dir, "init", "bad-ws", "--from", "failed-deploy", "--mode", "dc"}); err == nil {
		t.Fatalf("unsupported template mode accepted")
	}

	// Unknown mode fails cleanly.
	if _, _, err := runCLI(t, []string{"--dir", dir, "init", "bad-ws", "--from", "blank", "--mode", "nope"}); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}

func TestDoctorFailFlag(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "broken-ws")
	snap := filepath.Join(dir, "worksheets", "broken-ws", "worksheet.json")
	if err := os.WriteFile(snap, []byte("{corrupt"), 0o644); err != nil {
		t.Fatalf("corrupt snapshot: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"--dir", dir, "doctor", "--fail"})
	if err == nil {
		t.Fatalf("doctor --fail returned nil on corrupt worksheet\nstdout:\n%s", stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("doctor still must print its report: %v\nstdout:\n%s", err, stdout)
	}
	meta, _ := env["meta"].(map[string]any)
	if meta["hasErrors"] != true {
		t.Fatalf("doctor meta.hasErrors = %v", meta["hasErrors"])
	}
}

func TestDocsTopics(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())

	env := mustEnv(t, "docs")
	topics, _ := dataMap(t, env)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("no docs topics embedded")
	}
	first, _ := topics[0].(map[string]any)
	if first["name"] == "" || first["title"] == "" {
		t.Fatalf("topic entries need name and title: %#v", topics[0])
	}

	raw, stderr, err := runCLI(t, []string{"docs", "history", "--raw"})
	if err != nil {
		t.Fatalf("docs history --raw: %v\nstderr:\n%s", err, stderr)
	}
	if !strings.Contains(string(raw), "# History") {
		t.Fatalf("raw docs output missing heading:\n%s", raw)
	}

	if _, _, err := runCLI(t, []string{"docs", "no-such-topic"}); err == nil {
		t.Fatalf("unknown topic accepted")
	}
}

func TestYAMLOutputFormat(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "yaml-ws")
	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "--format", "yaml", "show", "pre"})
	if err != nil {
		t.Fatalf("yaml show: %v\nstderr:\n%s", err, stderr)
	}
	if !strings.Contains(string(stdout), "oneLine:") {
		t.Fatalf("yaml output missing json-named field:\n%s", stdout)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "--format", "toml", "show"}); err == nil {
		t.Fatalf("unknown format accepted")
	}
}

func TestNoCurrentWorksheetError(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	_, stderr, err := runCLI(t, []string{"--dir", dir, "show"})
	if err == nil {
		t.Fatalf("show without worksheet succeeded")
	}
	if !strings.Contains(string(stderr), "no current worksheet") {
		t.Fatalf("unhelpful error: %s", stderr)
	}
}

func TestInitOneLineAndForce(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "redo-ws", "--one-line", "checkout p99 regression")
	data := dataMap(t, mustEnv(t, "--dir", dir, "show"))
	pre, _ := data["pre"].(map[string]any)
	if pre["oneLine"] != "checkout p99 regression" {
		t.Fatalf("init --one-line not applied: %v", pre["oneLine"])
	}

	// Re-running init on the same name needs --force.
	if _, _, err := runCLI(t, []string{"--dir", dir, "init", "redo-ws"}); err == nil {
		t.Fatalf("re-init without --force accepted")
	}
	mustEnv(t, "--dir", dir, "init", "redo-ws", "--force")
	data = dataMap(t, mustEnv(t, "--dir", dir, "show"))
	pre, _ = data["pre"].(map[string]any)
	if pre["oneLine"] != "" {
		t.Fatalf("forced re-init should reset the worksheet, got oneLine %v", pre["oneLine"])
	}
}

func TestTemplatesApplyReplacesWorksheet(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "apply-ws")
	mustEnv(t, "--dir", dir, "set", "pre.oneLine", "scribbles")
	mustEnv(t, "--dir", dir, "theme", "dark")

	mustEnv(t, "--dir", dir, "templates", "apply", "checkout-latency", "--mode", "dc")
	data := dataMap(t, mustEnv(t, "--dir", dir, "show"))

	pre, _ := data["pre"].(map[string]any)
	if pre["oneLine"] != "Checkout p99 latency tripled since this morning" {
		t.Fatalf("apply did not replace content, oneLine = %v", pre["oneLine"])
	}
	causes, _ := data["causes"].([]any)
	if len(causes) == 0 {
		t.Fatalf("dc apply should keep template causes")
	}
	appearance, _ := data["appearance"].(map[string]any)
	if appearance["theme"] != "dark" {
		t.Fatalf("apply must keep worksheet appearance, got %v", appearance["theme"])
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "templates", "apply", "no-such-template"}); err == nil {
		t.Fatalf("unknown template accepted")
	}
}

func TestActionsRm(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "rm-ws")
	act := dataMap(t, mustEnv(t, "--dir", dir, "actions", "add", "rotate the pager"))
	id, _ := act["id"].(string)
	if id == "" {
		t.Fatalf("actions add returned no id: %#v", act)
	}
	mustEnv(t, "--dir", dir, "actions", "add", "write the retro doc")

	env := mustEnv(t, "--dir", dir, "actions", "rm", id)
	meta, _ := env["meta"].(map[string]any)
	if meta["actions"] != float64(1) {
		t.Fatalf("expected 1 action left, meta = %v", meta)
	}

	list := mustEnv(t, "--dir", dir, "actions", "list")
	items, _ := list["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 action after rm, got %d", len(items))
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "actions", "rm", id}); err == nil {
		t.Fatalf("removing a removed action succeeded")
	}
}

func TestRenderCommand(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "render-ws", "--one-line", "api 500 spike")
	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "render", "--width", "60"})
	if err != nil {
		t.Fatalf("render: %v\nstderr:\n%s", err, stderr)
	}
	if !strings.Contains(string(stdout), "api 500 spike") {
		t.Fatalf("render output missing the one-line:\n%s", stdout)
	}
	if !strings.Contains(string(stdout), "causes 0") {
		t.Fatalf("render output missing progress counters:\n%s", stdout)
	}
}

func TestThemeAutoResolves(t *testing.T) {
	t.Setenv("WARROOM_CONFIG_DIR", t.TempDir())
	dir := t.TempDir()

	mustEnv(t, "--dir", dir, "init", "auto-ws")
	data := dataMap(t, mustEnv(t, "--dir", dir, "theme", "auto"))
	th, _ := data["theme"].(string)
	if th != "light" && th != "dark" {
		t.Fatalf("theme auto resolved to %q", th)
	}
}
