// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package execute

import (
	"context"
	"io"
	"log/slog"

	"github.com/crier-io/crier/command"
	"github.com/crier-io/crier/database"
	"github.com/crier-io/crier/database/hotline"
	"github.com/crier-io/crier/database/models"
	"github.com/crier-io/crier/i18n"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
)

type Status string

const (
	StatusNoop         Status = "NOOP"
	StatusSuccess      Status = "SUCCESS"
	StatusError        Status = "ERROR"
	StatusUnauthorized Status = "UNAUTHORIZED"
)

// Notification is an independent outbound send produced by a command,
// already localized to its recipient.
type Notification struct {
	Recipient string
	Message   string
}

// Result is the outcome of executing one parsed command. Message is the
// direct reply to the sender; Notifications fan out to other parties.
type Result struct {
	Command       command.Command
	Status        Status
	Message       string
	Notifications []Notification
}

// Env is the channel/sender context for a single execution, captured by the
// classifier. Handlers re-read the sender's role from the store rather than
// trusting SenderRole, since a concurrent REMOVE/ADD may have changed it.
type Env struct {
	Channel        *models.Channel
	Sender         string
	SenderRole     models.Role
	SenderLanguage language.Tag
}

type Executor struct {
	config  ExecutorConfig
	metrics *executorMetrics
}

// Gateway is the subset of daemon operations that command handlers need.
type Gateway interface {
	Trust(ctx context.Context, channel, recipient, fingerprint string) error
}

type ExecutorConfig struct {
	Logger       *slog.Logger
	DB           *database.Database
	Hotline      *hotline.Store
	Gateway      Gateway
	Catalog      *i18n.Catalog
	PromRegistry prometheus.Registerer
	// SignupChannel restricts a designated provisioning channel to admins
	SignupChannel string
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "execute")
	e := &Executor{
		config: cfg,
	}
	if cfg.PromRegistry != nil {
		e.initMetrics()
	}
	return e
}

// Execute runs one parsed command against a channel. Exactly one of exec
// and parseErr is meaningful; a non-nil parseErr short-circuits to a
// localized error reply.
func (e *Executor) Execute(
	ctx context.Context,
	env Env,
	exec command.Executable,
	parseErr *command.ParseError,
) Result {
	// Only admins may act on the signup channel
	if e.config.SignupChannel != "" &&
		env.Channel.PhoneNumber == e.config.SignupChannel &&
		env.SenderRole != models.RoleAdmin {
		return e.done(Result{Command: command.CommandNone, Status: StatusNoop})
	}
	if parseErr != nil {
		return e.done(e.parseErrorResult(env, parseErr))
	}
	var res Result
	switch exec.Command {
	case command.CommandNone:
		res = Result{Command: command.CommandNone, Status: StatusNoop}
	case command.CommandAccept:
		res = e.handleAccept(ctx, env, exec)
	case command.CommandAdd:
		res = e.handleAdd(ctx, env, exec)
	case command.CommandDecline:
		res = e.handleDecline(ctx, env, exec)
	case command.CommandHelp:
		res = e.handleHelp(ctx, env, exec)
	case command.CommandInfo:
		res = e.handleInfo(ctx, env, exec)
	case command.CommandInvite:
		res = e.handleInvite(ctx, env, exec)
	case command.CommandJoin:
		res = e.handleJoin(ctx, env, exec)
	case command.CommandLeave:
		res = e.handleLeave(ctx, env, exec)
	case command.CommandRemove:
		res = e.handleRemove(ctx, env, exec)
	case command.CommandRename:
		res = e.handleRename(ctx, env, exec)
	case command.CommandReply:
		res = e.handleReply(ctx, env, exec)
	case command.CommandSetDescription:
		res = e.handleSetDescription(ctx, env, exec)
	case command.CommandSetLanguage:
		res = e.handleSetLanguage(ctx, env, exec)
	case command.CommandHotlineOn:
		res = e.handleHotlineToggle(ctx, env, exec, true)
	case command.CommandHotlineOff:
		res = e.handleHotlineToggle(ctx, env, exec, false)
	case command.CommandVouchingOn:
		res = e.handleVouchingToggle(ctx, env, exec, true)
	case command.CommandVouchingOff:
		res = e.handleVouchingToggle(ctx, env, exec, false)
	case command.CommandVouchLevel:
		res = e.handleVouchLevel(ctx, env, exec)
	default:
		res = Result{Command: exec.Command, Status: StatusNoop}
	}
	return e.done(res)
}

func (e *Executor) done(res Result) Result {
	if e.metrics != nil {
		e.metrics.commandsTotal.WithLabelValues(
			string(res.Command),
			string(res.Status),
		).Inc()
	}
	return res
}

// parseErrorResult localizes a parser failure. A REPLY parse error from a
// non-admin is rewritten to a generic not-admin message so the hotline
// reply syntax is not leaked to non-admins.
func (e *Executor) parseErrorResult(
	env Env,
	parseErr *command.ParseError,
) Result {
	if parseErr.Command == command.CommandReply &&
		env.SenderRole != models.RoleAdmin {
		return Result{
			Command: parseErr.Command,
			Status:  StatusError,
			Message: e.config.Catalog.Render(
				parseErr.Language,
				i18n.KeyErrorNotAdmin,
			),
		}
	}
	return Result{
		Command: parseErr.Command,
		Status:  StatusError,
		Message: e.config.Catalog.Render(
			parseErr.Language,
			parseErr.Key,
			parseErr.Args...,
		),
	}
}

// freshRole re-reads the sender's current role from the store.
func (e *Executor) freshRole(channel, member string) (models.Role, error) {
	return e.config.DB.ResolveRole(channel, member)
}

// persistFailure logs a storage or protocol failure and returns the generic
// localized try-again error. Internal error text never reaches the sender.
func (e *Executor) persistFailure(
	cmd command.Command,
	lang language.Tag,
	err error,
) Result {
	e.config.Logger.Error(
		"persistent write failed",
		"command", cmd,
		"error", err,
	)
	return Result{
		Command: cmd,
		Status:  StatusError,
		Message: e.config.Catalog.Render(lang, i18n.KeyErrorPersist),
	}
}

func (e *Executor) unauthorized(
	cmd command.Command,
	lang language.Tag,
	key i18n.Key,
) Result {
	return Result{
		Command: cmd,
		Status:  StatusUnauthorized,
		Message: e.config.Catalog.Render(lang, key),
	}
}

func (e *Executor) failure(
	cmd command.Command,
	lang language.Tag,
	key i18n.Key,
	args ...any,
) Result {
	return Result{
		Command: cmd,
		Status:  StatusError,
		Message: e.config.Catalog.Render(lang, key, args...),
	}
}

// adminNotices renders a per-recipient localized notification for every
// admin of the channel except those in exclude.
func (e *Executor) adminNotices(
	channel *models.Channel,
	exclude map[string]bool,
	render func(lang language.Tag) string,
) []Notification {
	var out []Notification
	for _, admin := range channel.Admins() {
		if exclude[admin.MemberPhoneNumber] {
			continue
		}
		out = append(out, Notification{
			Recipient: admin.MemberPhoneNumber,
			Message:   render(i18n.Match(admin.Language)),
		})
	}
	return out
}

// memberLanguage returns the stored locale for a channel member, falling
// back to the default locale for unknown numbers.
func memberLanguage(channel *models.Channel, phoneNumber string) language.Tag {
	if m := channel.Membership(phoneNumber); m != nil {
		return i18n.Match(m.Language)
	}
	return i18n.DefaultLanguage
}
