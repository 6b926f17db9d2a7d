package decision

import (
	"context"
	"fmt"
	"time"

	"role-validation-bot/internal/common/codec"
	"role-validation-bot/internal/common/discord"
	"role-validation-bot/internal/common/errors"
	"role-validation-bot/internal/common/logger"
	"role-validation-bot/internal/common/observability"
	"role-validation-bot/internal/models"

	"github.com/bwmarrin/discordgo"
)

type ServiceDependencies struct {
	Platform      discord.Platform
	Logger        logger.Logger
	Observability *observability.Observability
}

// Service applies accept and deny decisions to a member.
type Service struct {
	platform discord.Platform
	logger   logger.Logger
	obs      *observability.Observability
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		platform: deps.Platform,
		logger:   deps.Logger,
		obs:      deps.Observability,
	}
}

// Accept grants the validation role then every assignable role, renames the
// member, notifies them and closes the request. It halts on the first
// refused step; grants already applied are kept and returned in the Output
// alongside the error.
func (s *Service) Accept(ctx context.Context, input *Input, member *discordgo.Member) (*Output, error) {
	description, err := discord.EmbedDescription(input.Message)
	if err != nil {
		return nil, err
	}
	request, err := codec.DecodeDecision(description)
	if err != nil {
		return nil, err
	}
	if request.MemberID != input.Target.MemberID {
		return nil, errors.NewMalformedStateError(fmt.Sprintf(
			"button targets %s but request names %s", input.Target.MemberID, request.MemberID))
	}

	mention := codec.UserMention(input.Target.MemberID)

	start := time.Now()
	granted, err := s.grantRoles(input.GuildID, member, request, mention)
	s.obs.RecordStepDuration(ctx, "grant_roles", time.Since(start), status(err))
	output := &Output{
		Action:       models.DecisionAccept,
		MemberID:     input.Target.MemberID,
		GrantedRoles: granted,
	}
	if err != nil {
		return output, err
	}

	nickname := request.Nickname()
	if err := s.rename(input.GuildID, member, granted, nickname, mention); err != nil {
		return output, err
	}
	output.Nickname = nickname

	output.Notified = s.notify(ctx, input.Target.MemberID, AcceptedDM)

	if err := s.close(input, models.DecisionAccept); err != nil {
		return output, err
	}
	return output, nil
}

// Deny notifies the member and closes the request. Roles and nickname are
// left untouched.
func (s *Service) Deny(ctx context.Context, input *Input) (*Output, error) {
	notified := s.notify(ctx, input.Target.MemberID, DeniedDM)

	if err := s.close(input, models.DecisionDeny); err != nil {
		return nil, err
	}

	return &Output{
		Action:   models.DecisionDeny,
		MemberID: input.Target.MemberID,
		Notified: notified,
	}, nil
}

func (s *Service) grantRoles(guildID string, member *discordgo.Member, request *models.DecisionRequest, mention string) ([]string, error) {
	ids := append([]string{request.ValidationRoleID}, request.RoleIDs...)
	roles, err := discord.ResolveRoles(s.platform, guildID, ids)
	if err != nil {
		return nil, err
	}

	granted := make([]string, 0, len(roles))
	for i, role := range roles {
		if err := s.platform.AddRole(guildID, member.User.ID, role.ID); err != nil {
			stdErr := discord.ClassifyError(err)
			if stdErr.Code == errors.ErrCodePermissionDenied {
				msg := fmt.Sprintf("Je n'ai pas les droits pour ajouter le rôle %s à %s.", role.Name, mention)
				if i == 0 {
					msg = fmt.Sprintf("Je n'ai pas les droits pour ajouter le rôle de validation à %s.", mention)
				}
				return granted, stdErr.WithMessage(msg)
			}
			return granted, stdErr
		}
		granted = append(granted, role.ID)
	}
	return granted, nil
}

// rename refuses the guild owner and any member whose top role, including
// the roles just granted, is not strictly below the bot's.
func (s *Service) rename(guildID string, member *discordgo.Member, granted []string, nickname, mention string) error {
	guild, err := s.platform.Guild(guildID)
	if err != nil {
		return discord.ClassifyError(err)
	}
	if guild.OwnerID == member.User.ID {
		return errors.NewPermissionDeniedError(
			fmt.Sprintf("Je ne peux pas modifier le nom du propriétaire du serveur %s.", mention), nil)
	}

	botMember, err := s.platform.Member(guildID, s.platform.BotUserID())
	if err != nil {
		return discord.ClassifyError(err)
	}
	guildRoles, err := s.platform.GuildRoles(guildID)
	if err != nil {
		return discord.ClassifyError(err)
	}
	byID := discord.RolesByID(guildRoles)

	target := &discordgo.Member{Roles: append(append([]string{}, member.Roles...), granted...)}
	if !discord.Outranks(discord.TopRole(botMember, byID), discord.TopRole(target, byID)) {
		return errors.NewPermissionDeniedError(fmt.Sprintf(
			"Je ne peux pas modifier le nom de %s parce que le rôle du bot est inférieur ou égal au sien.", mention), nil)
	}

	if err := s.platform.SetNickname(guildID, member.User.ID, nickname); err != nil {
		stdErr := discord.ClassifyError(err)
		if stdErr.Code == errors.ErrCodePermissionDenied {
			return stdErr.WithMessage(fmt.Sprintf("Je n'ai pas les droits pour modifier le nom de %s.", mention))
		}
		return stdErr
	}
	return nil
}

// notify sends a direct message. Members may refuse DMs, so failure is only
// logged.
func (s *Service) notify(ctx context.Context, memberID, content string) bool {
	if err := s.platform.DirectMessage(memberID, content); err != nil {
		logger.FromContext(ctx, s.logger).Warn("Could not notify member", map[string]interface{}{
			"memberId": memberID,
			"error":    err.Error(),
		})
		return false
	}
	return true
}

// close appends the audit line and disables the buttons in place.
func (s *Service) close(input *Input, action models.DecisionAction) error {
	msg := input.Message
	if msg == nil || len(msg.Embeds) == 0 || msg.Embeds[0] == nil {
		return errors.NewMalformedStateError("decision request carries no embed")
	}

	embed := *msg.Embeds[0]
	embed.Description = codec.AppendDecisionAudit(embed.Description, action, input.ActorID)
	components := discord.DisableComponents(msg.Components)

	edit := discordgo.NewMessageEdit(msg.ChannelID, msg.ID).SetEmbeds([]*discordgo.MessageEmbed{&embed})
	edit.Components = &components

	if _, err := s.platform.EditMessage(edit); err != nil {
		return discord.ClassifyError(err)
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
