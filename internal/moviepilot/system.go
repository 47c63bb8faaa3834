package moviepilot

import (
	"context"

	"github.com/moviepilot/mp-cli/internal/api"
)

// SystemService covers server settings, logs and maintenance actions.
type SystemService struct{ service }

func (s *SystemService) Env(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Env", "/system/env", nil)
}

func (s *SystemService) Global(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Global", "/system/global", nil)
}

func (s *SystemService) Versions(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Versions", "/system/versions", nil)
}

func (s *SystemService) Setting(ctx context.Context, key string) (*api.Response, error) {
	return s.get(ctx, "Setting", "/system/setting/"+seg(key), nil)
}

// SetSetting stores value (any JSON-encodable value) under key.
func (s *SystemService) SetSetting(ctx context.Context, key string, value any) (*api.Response, error) {
	return s.call(ctx, "SetSetting", api.Request{Method: "POST", Path: "/system/setting/" + seg(key), Body: value})
}

// Message reads pending system messages for role (default "system").
func (s *SystemService) Message(ctx context.Context, role string) (*api.Response, error) {
	if role == "" {
		role = "system"
	}
	return s.get(ctx, "Message", "/system/message", query().str("role", role))
}

// Logging returns the last length lines of logfile. length -1 returns the
// whole file as text.
func (s *SystemService) Logging(ctx context.Context, length int, logfile string) (*api.Response, error) {
	if length == 0 {
		length = 50
	}
	if logfile == "" {
		logfile = "moviepilot.log"
	}
	return s.get(ctx, "Logging", "/system/logging", query().num("length", length).str("logfile", logfile))
}

func (s *SystemService) NetTest(ctx context.Context, target string, proxy bool) (*api.Response, error) {
	return s.get(ctx, "NetTest", "/system/nettest", query().str("url", target).flag("proxy", proxy))
}

func (s *SystemService) RuleTest(ctx context.Context, title, ruleGroup, subtitle string) (*api.Response, error) {
	q := query().str("title", title).str("rulegroup_name", ruleGroup).str("subtitle", subtitle)
	return s.get(ctx, "RuleTest", "/system/ruletest", q)
}

func (s *SystemService) ModuleList(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "ModuleList", "/system/modulelist", nil)
}

func (s *SystemService) ModuleTest(ctx context.Context, moduleID string) (*api.Response, error) {
	return s.get(ctx, "ModuleTest", "/system/moduletest/"+seg(moduleID), nil)
}

func (s *SystemService) Restart(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Restart", "/system/restart", nil)
}

func (s *SystemService) RunScheduler(ctx context.Context, jobID string) (*api.Response, error) {
	return s.get(ctx, "RunScheduler", "/system/runscheduler", query().str("jobid", jobID))
}

func (s *SystemService) RunScheduler2(ctx context.Context, jobID string) (*api.Response, error) {
	return s.getToken(ctx, "RunScheduler2", "/system/runscheduler2", query().str("jobid", jobID))
}
