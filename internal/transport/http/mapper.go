package http

import (
	"encoding/json"
	"math"

	"tabletop-server/internal/core"
	"tabletop-server/internal/proto"
)

// inboundToCommand maps a wire request onto a hub command. A nil command
// with a non-nil proto.Error means "answer the client and keep reading"; a
// returned error tears the connection down.
func inboundToCommand(client *core.Client, inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeRoomCreate:
		return &core.Command{Kind: core.CommandCreateRoom, Client: client, Seq: inbound.Seq}, nil, nil

	case proto.InboundTypeRoomJoin:
		var data proto.JoinData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid join payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:   core.CommandJoinRoom,
			Client: client,
			Seq:    inbound.Seq,
			Room:   data.RoomID,
			Join:   &core.JoinParams{Name: data.Name, ImgURL: data.ImgURL, Color: data.Color},
		}, nil, nil

	case proto.InboundTypeTokenMove:
		var data proto.MoveData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid move payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:   core.CommandMoveToken,
			Client: client,
			Seq:    inbound.Seq,
			Room:   data.RoomID,
			Move:   &core.MoveParams{ID: data.ID, X: coerceFloat(data.X), Y: coerceFloat(data.Y)},
		}, nil, nil

	case proto.InboundTypeAddEnemy:
		var data proto.AddEnemyData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid add-enemy payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:   core.CommandAddEnemy,
			Client: client,
			Seq:    inbound.Seq,
			Room:   data.RoomID,
			Enemy:  &core.EnemyParams{Name: data.Name, ImgURL: data.ImgURL, X: coerceFloat(data.X), Y: coerceFloat(data.Y)},
		}, nil, nil

	case proto.InboundTypeTokenRemove:
		var data proto.RemoveData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid remove payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:    core.CommandRemoveToken,
			Client:  client,
			Seq:     inbound.Seq,
			Room:    data.RoomID,
			TokenID: data.ID,
		}, nil, nil

	case proto.InboundTypeDMLogin:
		var data proto.DMLoginData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid login payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:     core.CommandDMLogin,
			Client:   client,
			Seq:      inbound.Seq,
			Room:     data.RoomID,
			Password: data.Password,
		}, nil, nil

	case proto.InboundTypeMapSet:
		var data proto.MapSetData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid map payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:   core.CommandSetMap,
			Client: client,
			Seq:    inbound.Seq,
			Room:   data.RoomID,
			Map:    &core.MapParams{URL: data.URL, Width: coerceFloat(data.Width), Height: coerceFloat(data.Height)},
		}, nil, nil

	case proto.InboundTypeEffectAdd:
		var data proto.EffectAddData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid effect payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:   core.CommandAddEffect,
			Client: client,
			Seq:    inbound.Seq,
			Room:   data.RoomID,
			Effect: &core.EffectParams{
				Kind:   data.Effect.Kind,
				X:      data.Effect.X,
				Y:      data.Effect.Y,
				Radius: data.Effect.Radius,
				Color:  data.Effect.Color,
			},
		}, nil, nil

	case proto.InboundTypeEffectRemove:
		var data proto.RemoveData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid remove payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:     core.CommandRemoveEffect,
			Client:   client,
			Seq:      inbound.Seq,
			Room:     data.RoomID,
			EffectID: data.ID,
		}, nil, nil

	case proto.InboundTypeEventLog:
		var data proto.EventLogData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid event payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:   core.CommandLogEvent,
			Client: client,
			Seq:    inbound.Seq,
			Room:   data.RoomID,
			Log:    &core.LogParams{Type: data.Type, Text: data.Text, Visibility: data.Visibility},
		}, nil, nil

	case proto.InboundTypeEventAttack:
		var data proto.EventAttackData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid attack payload"), nil
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required"), nil
		}
		return &core.Command{
			Kind:   core.CommandLogAttack,
			Client: client,
			Seq:    inbound.Seq,
			Room:   data.RoomID,
			Attack: &core.AttackParams{
				AttackerID: data.AttackerID,
				TargetID:   data.TargetID,
				Text:       data.Text,
				Visibility: data.Visibility,
			},
		}, nil, nil

	default:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown message type"}, nil
	}
}

// outboundFromEvent serializes a hub event into the wire envelope.
func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventAck:
		return ackOutbound(event.Ack)
	case core.EventTokenUpsert:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTokenUpsert,
			Data:  tokenData(event.Token),
		}
	case core.EventTokenMove:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTokenMove,
			Data:  proto.TokenMoveData{ID: event.TokenID, X: event.X, Y: event.Y},
		}
	case core.EventTokenRemove:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTokenRemove,
			Data:  proto.IDData{ID: event.TokenID},
		}
	case core.EventRoomDM:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoomDM,
			Data:  proto.DMData{DMID: optionalID(event.DMID)},
		}
	case core.EventMapSet:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMapSet,
			Data:  mapData(*event.Map),
		}
	case core.EventEffectUpsert:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventEffectUpsert,
			Data:  effectData(event.Effect),
		}
	case core.EventEffectRemove:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventEffectRemove,
			Data:  proto.IDData{ID: event.EffectID},
		}
	case core.EventLogged:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNew,
			Data:  entryData(event.Entry),
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func ackOutbound(ack *core.Ack) proto.Outbound {
	data := proto.AckData{OK: ack.OK, RoomID: ack.RoomID}
	if ack.Err != nil {
		data.Error = &proto.Error{Code: ack.Err.Code, Msg: ack.Err.Message}
	}
	if ack.State != nil {
		data.State = stateData(ack.State)
	}
	if ack.Token != nil {
		t := tokenData(ack.Token)
		data.Token = &t
	}
	if ack.Effect != nil {
		e := effectData(ack.Effect)
		data.Effect = &e
	}
	if ack.Entry != nil {
		ev := entryData(ack.Entry)
		data.Event = &ev
	}
	return proto.Outbound{Type: proto.OutboundTypeAck, Seq: ack.Seq, Data: data}
}

func stateData(snap *core.StateSnapshot) *proto.StateData {
	state := &proto.StateData{
		Map:     mapData(snap.Map),
		Tokens:  make([]proto.TokenData, 0, len(snap.Tokens)),
		Effects: make([]proto.EffectData, 0, len(snap.Effects)),
		DMID:    optionalID(snap.DMID),
	}
	for i := range snap.Tokens {
		state.Tokens = append(state.Tokens, tokenData(&snap.Tokens[i]))
	}
	for i := range snap.Effects {
		state.Effects = append(state.Effects, effectData(&snap.Effects[i]))
	}
	return state
}

func tokenData(t *core.Token) proto.TokenData {
	return proto.TokenData{
		ID:      t.ID,
		Kind:    string(t.Kind),
		OwnerID: t.OwnerID,
		Name:    t.Name,
		X:       t.X,
		Y:       t.Y,
		ImgURL:  t.ImgURL,
		Color:   t.Color,
	}
}

func mapData(m core.MapDescriptor) proto.MapData {
	return proto.MapData{URL: m.URL, Width: m.Width, Height: m.Height}
}

func effectData(e *core.Effect) proto.EffectData {
	return proto.EffectData{ID: e.ID, Kind: e.Kind, X: e.X, Y: e.Y, Radius: e.Radius, Color: e.Color}
}

func entryData(entry *core.LogEntry) proto.EventData {
	return proto.EventData{
		ID:           entry.ID,
		At:           entry.At,
		Type:         entry.Type,
		Text:         entry.Text,
		Visibility:   entry.Visibility,
		By:           entry.By,
		AttackerID:   entry.AttackerID,
		AttackerName: entry.AttackerName,
		TargetID:     entry.TargetID,
		TargetName:   entry.TargetName,
	}
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

// coerceFloat turns a decoded JSON value into a float64. Anything that is
// not a number becomes NaN, which the handlers clamp to the lower bound.
func coerceFloat(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return math.NaN()
}
