package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/observability"
	"github.com/kursadbilgin/slowmode-engine/internal/provider"
	"github.com/kursadbilgin/slowmode-engine/internal/throttle"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Slow mode subcommands.
const (
	CommandEnable  = "enable"
	CommandDisable = "disable"
	CommandList    = "list"
	CommandHelp    = "help"
)

// CommandOutcome classifies a command reply.
type CommandOutcome string

const (
	OutcomeEnabled   CommandOutcome = "enabled"
	OutcomeDisabled  CommandOutcome = "disabled"
	OutcomeListed    CommandOutcome = "listed"
	OutcomeHelp      CommandOutcome = "help"
	OutcomeForbidden CommandOutcome = "forbidden"
	OutcomeRejected  CommandOutcome = "rejected"
	OutcomeFailed    CommandOutcome = "failed"
)

// CommandRequest is one invocation of the slow mode command.
type CommandRequest struct {
	RoomID string
	UserID string
	Args   []string
}

// CommandReply is the text sent back to the invoking user.
type CommandReply struct {
	Text    string
	Outcome CommandOutcome
}

// AdminService runs the slow mode command and the uninstall teardown.
type AdminService struct {
	rooms      throttle.RoomRegistry
	timestamps throttle.TimestampStore
	platform   provider.Platform
	botUserID  string
	logger     *zap.Logger
}

func NewAdminService(
	rooms throttle.RoomRegistry,
	timestamps throttle.TimestampStore,
	platform provider.Platform,
	botUserID string,
	logger *zap.Logger,
) (*AdminService, error) {
	if rooms == nil {
		return nil, fmt.Errorf("room registry is required")
	}
	if timestamps == nil {
		return nil, fmt.Errorf("timestamp store is required")
	}
	if platform == nil {
		return nil, fmt.Errorf("chat platform is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AdminService{
		rooms:      rooms,
		timestamps: timestamps,
		platform:   platform,
		botUserID:  botUserID,
		logger:     logger,
	}, nil
}

// Execute runs the command and delivers the reply to the invoking user. The
// reply is also returned so callers can render it directly.
func (s *AdminService) Execute(ctx context.Context, req CommandRequest) (*CommandReply, error) {
	if strings.TrimSpace(req.RoomID) == "" {
		return nil, fmt.Errorf("%w: roomId is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}

	user, err := s.platform.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	room, err := s.platform.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room: %w", err)
	}

	var reply *CommandReply
	switch subcommand(req.Args) {
	case CommandEnable:
		reply = s.guarded(user, func() *CommandReply { return s.enable(ctx, room) })
	case CommandDisable:
		reply = s.guarded(user, func() *CommandReply { return s.disable(ctx, room) })
	case CommandList:
		reply = s.list(ctx)
	default:
		reply = &CommandReply{Text: domain.HelpText(), Outcome: OutcomeHelp}
	}

	s.reply(ctx, user, room, reply)
	return reply, nil
}

// ListRooms returns every room with slow mode enabled.
func (s *AdminService) ListRooms(ctx context.Context) ([]domain.ThrottledRoom, error) {
	return s.rooms.ListAll(ctx)
}

// Uninstall drops every throttled room and every last message record.
func (s *AdminService) Uninstall(ctx context.Context) error {
	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.rooms.DropAll(groupCtx); err != nil {
			return fmt.Errorf("failed to drop throttled rooms: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.timestamps.DropAll(groupCtx); err != nil {
			return fmt.Errorf("failed to drop last message records: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	observability.WithContextLogger(s.logger, ctx).Info("slow mode data removed")
	return nil
}

func (s *AdminService) guarded(user *domain.User, run func() *CommandReply) *CommandReply {
	if !user.CanManageSlowMode() {
		return &CommandReply{Text: domain.MsgMustBeModeratorOrAdmin, Outcome: OutcomeForbidden}
	}
	return run()
}

func (s *AdminService) enable(ctx context.Context, room *domain.Room) *CommandReply {
	if room.IsDirect() {
		return &CommandReply{Text: domain.MsgNoDirectRoom, Outcome: OutcomeRejected}
	}

	if _, err := s.rooms.Enable(ctx, *room); err != nil {
		if errors.Is(err, domain.ErrAlreadyEnabled) {
			return &CommandReply{Text: domain.MsgAlreadySlowed, Outcome: OutcomeRejected}
		}
		observability.WithContextLogger(s.logger, ctx).Error("failed to enable slow mode",
			zap.String("roomId", room.ID),
			zap.Error(err),
		)
		return &CommandReply{Text: domain.MsgEnableFailed, Outcome: OutcomeFailed}
	}

	observability.WithContextLogger(s.logger, ctx).Info("slow mode enabled", zap.String("roomId", room.ID))
	return &CommandReply{Text: domain.MsgEnableSuccessful, Outcome: OutcomeEnabled}
}

// Last message records of the room are left in place.
func (s *AdminService) disable(ctx context.Context, room *domain.Room) *CommandReply {
	if room.IsDirect() {
		return &CommandReply{Text: domain.MsgNoDirectRoom, Outcome: OutcomeRejected}
	}

	if err := s.rooms.Disable(ctx, room.ID); err != nil {
		if errors.Is(err, domain.ErrNotEnabled) {
			return &CommandReply{Text: domain.MsgAlreadyNotSlowed, Outcome: OutcomeRejected}
		}
		observability.WithContextLogger(s.logger, ctx).Error("failed to disable slow mode",
			zap.String("roomId", room.ID),
			zap.Error(err),
		)
		return &CommandReply{Text: domain.MsgDisableFailed, Outcome: OutcomeFailed}
	}

	observability.WithContextLogger(s.logger, ctx).Info("slow mode disabled", zap.String("roomId", room.ID))
	return &CommandReply{Text: domain.MsgDisableSuccessful, Outcome: OutcomeDisabled}
}

func (s *AdminService) list(ctx context.Context) *CommandReply {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("failed to list throttled rooms", zap.Error(err))
		return &CommandReply{Text: domain.MsgNoSlowedRooms, Outcome: OutcomeFailed}
	}
	return &CommandReply{Text: domain.RoomListText(rooms), Outcome: OutcomeListed}
}

func (s *AdminService) reply(ctx context.Context, user *domain.User, room *domain.Room, reply *CommandReply) {
	err := s.platform.NotifyUser(ctx, provider.DirectNotice{
		UserID:   user.ID,
		RoomID:   room.ID,
		SenderID: s.botUserID,
		Text:     reply.Text,
	})
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Warn("failed to deliver command reply",
			zap.String("userId", user.ID),
			zap.String("roomId", room.ID),
			zap.Error(err),
		)
	}
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return CommandHelp
	}
	return strings.ToLower(strings.TrimSpace(args[0]))
}
