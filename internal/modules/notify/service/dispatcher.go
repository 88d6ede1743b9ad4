package service

import (
	"context"
	"fmt"

	"shotwatch/internal/modules/notify/domain"
	notifyout "shotwatch/internal/modules/notify/port/out"
	"shotwatch/internal/platform/clock"
	"shotwatch/internal/platform/id"
	"shotwatch/internal/platform/logging"
)

var log = logging.MustGetLogger("notify")

// Dispatcher turns notices into sink calls. Send failures are returned to
// the caller; upload failures and missing media degrade to a text message.
type Dispatcher struct {
	sink   notifyout.Sink
	ledger notifyout.Ledger
	clock  clock.Clock
	idGen  id.Generator
	zone   clock.Zone
}

func NewDispatcher(sink notifyout.Sink, ledger notifyout.Ledger, clock clock.Clock, idGen id.Generator, zone clock.Zone) *Dispatcher {
	return &Dispatcher{sink: sink, ledger: ledger, clock: clock, idGen: idGen, zone: zone}
}

func (d *Dispatcher) Start(ctx context.Context, n domain.StartNotice) (domain.Delivery, error) {
	body := domain.StartMessage(d.zone, n)
	if err := d.sink.SendText(ctx, body); err != nil {
		return domain.Delivery{}, fmt.Errorf("send start message: %w", err)
	}
	log.Infof("%s: start of %s announced", n.SubjectName, n.SessionID)
	return d.record(ctx, domain.Delivery{
		Kind:        domain.KindStart,
		Channel:     domain.ChannelText,
		SubjectID:   n.SubjectID,
		SubjectName: n.SubjectName,
		SessionID:   n.SessionID,
		Body:        body,
	}), nil
}

func (d *Dispatcher) End(ctx context.Context, n domain.EndNotice) (domain.Delivery, error) {
	delivery := domain.Delivery{
		Kind:        domain.KindEnd,
		SubjectID:   n.SubjectID,
		SubjectName: n.SubjectName,
		SessionID:   n.SessionID,
	}
	if n.Media == nil {
		delivery.Channel = domain.ChannelText
		delivery.Body = domain.EndSummary(d.zone, n, false)
		if err := d.sink.SendText(ctx, delivery.Body); err != nil {
			return domain.Delivery{}, fmt.Errorf("send end summary: %w", err)
		}
		return d.record(ctx, delivery), nil
	}

	channel, body, err := d.deliverMedia(ctx, n.SubjectName, n.Media.Path, domain.EndCaption(d.zone, n), domain.EndSummary(d.zone, n, true))
	if err != nil {
		return domain.Delivery{}, err
	}
	delivery.Channel = channel
	delivery.Body = body
	if channel == domain.ChannelVideo {
		delivery.MediaPath = n.Media.Path
	}
	return d.record(ctx, delivery), nil
}

func (d *Dispatcher) Daily(ctx context.Context, n domain.DailyNotice) (domain.Delivery, error) {
	caption := domain.DailyCaption(n)
	delivery := domain.Delivery{
		Kind:        domain.KindDaily,
		SubjectID:   n.SubjectID,
		SubjectName: n.SubjectName,
		SessionID:   n.Day,
	}
	if n.Media == nil {
		delivery.Channel = domain.ChannelText
		delivery.Body = caption
		if err := d.sink.SendText(ctx, caption); err != nil {
			return domain.Delivery{}, fmt.Errorf("send daily summary: %w", err)
		}
		return d.record(ctx, delivery), nil
	}
	channel, body, err := d.deliverMedia(ctx, n.SubjectName, n.Media.Path, caption, caption)
	if err != nil {
		return domain.Delivery{}, err
	}
	delivery.Channel = channel
	delivery.Body = body
	if channel == domain.ChannelVideo {
		delivery.MediaPath = n.Media.Path
	}
	return d.record(ctx, delivery), nil
}

// deliverMedia uploads path and sends it with caption, or sends fallback as
// text when the upload yields no handle.
func (d *Dispatcher) deliverMedia(ctx context.Context, subjectName, path, caption, fallback string) (domain.Channel, string, error) {
	handle, err := d.sink.UploadMedia(ctx, path)
	if err != nil || handle == "" {
		log.Warningf("%s: media upload of %s failed, sending text instead: %v", subjectName, path, err)
		if err := d.sink.SendText(ctx, fallback); err != nil {
			return "", "", fmt.Errorf("send fallback text: %w", err)
		}
		return domain.ChannelText, fallback, nil
	}
	if err := d.sink.SendVideo(ctx, handle, caption); err != nil {
		return "", "", fmt.Errorf("send video: %w", err)
	}
	log.Infof("%s: video %s delivered", subjectName, path)
	return domain.ChannelVideo, caption, nil
}

// record stamps and stores a delivery. The message is already out, so a
// ledger failure is only logged.
func (d *Dispatcher) record(ctx context.Context, delivery domain.Delivery) domain.Delivery {
	delivery.ID = d.idGen.New()
	delivery.SentAt = d.clock.Now()
	if d.ledger == nil {
		return delivery
	}
	if err := d.ledger.Record(ctx, delivery); err != nil {
		log.Warningf("record %s delivery for %s: %v", delivery.Kind, delivery.SessionID, err)
	}
	return delivery
}
