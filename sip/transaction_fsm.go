package sip

import (
	"context"
	"fmt"

	"github.com/qmuntal/stateless"
)

// txEvent is an input of a client transaction state machine.
type txEvent string

const (
	txEvtStart       txEvent = "start"
	txEvtTimerA      txEvent = "timer_a"
	txEvtTimerB      txEvent = "timer_b"
	txEvtTimerD      txEvent = "timer_d"
	txEvtTimerE      txEvent = "timer_e"
	txEvtTimerF      txEvent = "timer_f"
	txEvtTimerK      txEvent = "timer_k"
	txEvtTimerCancel txEvent = "timer_cancel"
	txEvtRecv1xx     txEvent = "recv_1xx"
	txEvtRecv2xx     txEvent = "recv_2xx"
	txEvtRecv300699  txEvent = "recv_300-699"
	txEvtAppAck      txEvent = "app_ack"
	txEvtCancel      txEvent = "cancel"
	txEvtTranspErr   txEvent = "transport_error"
	txEvtTerminate   txEvent = "terminate"
)

// txAction is a side effect produced by a transition.
// Actions are executed in order under the transaction lock.
type txAction uint8

const (
	actSendReq txAction = iota + 1
	actSendAck
	actSendAppAck
	actArmA
	actDoubleA
	actStopA
	actArmB
	actStopB
	actArmD
	actArmE
	actBackoffE
	actCapE
	actStopE
	actArmF
	actStopF
	actArmK
	actArmCancel
	actStopCancel
	actAccept
	actSetFinal
	actPassRes
	actNotifyTimeout
	actNotifyTranspErr
	actDestroy
)

var txActionNames = [...]string{
	actSendReq:         "send_request",
	actSendAck:         "send_ack",
	actSendAppAck:      "send_app_ack",
	actArmA:            "arm_a",
	actDoubleA:         "double_a",
	actStopA:           "stop_a",
	actArmB:            "arm_b",
	actStopB:           "stop_b",
	actArmD:            "arm_d",
	actArmE:            "arm_e",
	actBackoffE:        "backoff_e",
	actCapE:            "cap_e",
	actStopE:           "stop_e",
	actArmF:            "arm_f",
	actStopF:           "stop_f",
	actArmK:            "arm_k",
	actArmCancel:       "arm_cancel",
	actStopCancel:      "stop_cancel",
	actAccept:          "accept",
	actSetFinal:        "set_final",
	actPassRes:         "pass_response",
	actNotifyTimeout:   "notify_timeout",
	actNotifyTranspErr: "notify_transport_error",
	actDestroy:         "destroy",
}

func (a txAction) String() string {
	if int(a) < len(txActionNames) && txActionNames[a] != "" {
		return txActionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// txEnv is the part of the transaction record that transitions depend on besides the state.
type txEnv struct {
	// reliable is true when the request is sent over a reliable transport.
	reliable bool
	// hasFinal is true once a final response has been accepted.
	hasFinal bool
	// cancelArmed is true while the CANCEL guard timer is live.
	cancelArmed bool
}

// txTransition decides the next state and the actions to run for the event.
// An empty action list with the unchanged state means the event does not apply.
type txTransition func(state TransactionState, evt txEvent, env txEnv) (TransactionState, []txAction)

// inviteTransition implements the INVITE client transaction of RFC 3261 Section 17.1.1.
// A 2xx response terminates the transaction right away.
func inviteTransition(state TransactionState, evt txEvent, env txEnv) (TransactionState, []txAction) {
	switch state {
	case TransactionStateCalling, TransactionStateProceeding:
		switch evt {
		case txEvtStart:
			if state != TransactionStateCalling {
				break
			}
			acts := []txAction{actSendReq}
			if !env.reliable {
				acts = append(acts, actArmA)
			}
			return state, append(acts, actArmB)
		case txEvtTimerA:
			if state == TransactionStateCalling {
				return state, []txAction{actDoubleA, actSendReq, actArmA}
			}
		case txEvtTimerB:
			if state == TransactionStateCalling {
				return TransactionStateTerminated, []txAction{actNotifyTimeout, actDestroy}
			}
		case txEvtRecv1xx:
			if state == TransactionStateCalling {
				return TransactionStateProceeding, []txAction{actAccept, actStopA, actStopB, actPassRes}
			}
			return state, []txAction{actAccept, actPassRes}
		case txEvtRecv2xx:
			return TransactionStateTerminated, []txAction{actAccept, actSetFinal, actPassRes, actDestroy}
		case txEvtRecv300699:
			acts := []txAction{actAccept, actSetFinal, actStopA, actStopB, actStopCancel, actPassRes, actSendAck}
			return TransactionStateCompleted, append(acts, completedEntry(actArmD, env))
		case txEvtAppAck:
			acts := []txAction{actSendAppAck, actStopA, actStopB, actStopCancel}
			return TransactionStateCompleted, append(acts, completedEntry(actArmD, env))
		case txEvtCancel:
			if !env.cancelArmed {
				return state, []txAction{actArmCancel}
			}
		case txEvtTimerCancel:
			return TransactionStateTerminated, []txAction{actNotifyTimeout, actDestroy}
		case txEvtTranspErr:
			return TransactionStateTerminated, []txAction{actDestroy, actNotifyTranspErr}
		case txEvtTerminate:
			return TransactionStateTerminated, []txAction{actDestroy}
		}
	case TransactionStateCompleted:
		switch evt {
		case txEvtRecv300699:
			return state, []txAction{actAccept, actSendAck}
		case txEvtTimerD:
			return TransactionStateTerminated, []txAction{actDestroy}
		case txEvtTranspErr:
			return TransactionStateTerminated, transportErrorActions(env)
		case txEvtTerminate:
			return TransactionStateTerminated, []txAction{actDestroy}
		}
	}
	return state, nil
}

// nonInviteTransition implements the non-INVITE client transaction of RFC 3261 Section 17.1.2.
func nonInviteTransition(state TransactionState, evt txEvent, env txEnv) (TransactionState, []txAction) {
	switch state {
	case TransactionStateTrying, TransactionStateProceeding:
		switch evt {
		case txEvtStart:
			if state != TransactionStateTrying {
				break
			}
			acts := []txAction{actSendReq}
			if !env.reliable {
				acts = append(acts, actArmE)
			}
			return state, append(acts, actArmF)
		case txEvtTimerE:
			if state == TransactionStateTrying {
				return state, []txAction{actBackoffE, actSendReq, actArmE}
			}
			return state, []txAction{actCapE, actSendReq, actArmE}
		case txEvtTimerF:
			return TransactionStateTerminated, []txAction{actNotifyTimeout, actDestroy}
		case txEvtRecv1xx:
			return TransactionStateProceeding, []txAction{actAccept, actPassRes}
		case txEvtRecv2xx, txEvtRecv300699:
			acts := []txAction{actAccept, actSetFinal, actPassRes, actStopE, actStopF}
			return TransactionStateCompleted, append(acts, completedEntry(actArmK, env))
		case txEvtTranspErr:
			return TransactionStateTerminated, []txAction{actDestroy, actNotifyTranspErr}
		case txEvtTerminate:
			return TransactionStateTerminated, []txAction{actDestroy}
		}
	case TransactionStateCompleted:
		switch evt {
		case txEvtRecv2xx, txEvtRecv300699:
			return state, []txAction{actAccept}
		case txEvtTimerK:
			return TransactionStateTerminated, []txAction{actDestroy}
		case txEvtTranspErr:
			return TransactionStateTerminated, transportErrorActions(env)
		case txEvtTerminate:
			return TransactionStateTerminated, []txAction{actDestroy}
		}
	}
	return state, nil
}

// completedEntry returns the action armed on entering the completed state.
// Reliable transports do not retransmit responses, so the transaction is destroyed right away.
func completedEntry(arm txAction, env txEnv) txAction {
	if env.reliable {
		return actDestroy
	}
	return arm
}

func transportErrorActions(env txEnv) []txAction {
	if env.hasFinal {
		return []txAction{actDestroy}
	}
	return []txAction{actDestroy, actNotifyTranspErr}
}

// newLifecycleGuard builds the state machine that validates the edges chosen by the transition functions.
// Triggers are destination states, so a fire either applies a legal edge or fails.
func newLifecycleGuard(
	typ TransactionType,
	accessor func() TransactionState,
	mutator func(TransactionState),
) *stateless.StateMachine {
	fsm := stateless.NewStateMachineWithExternalStorage(
		func(_ context.Context) (stateless.State, error) { return accessor(), nil },
		func(_ context.Context, s stateless.State) error {
			mutator(s.(TransactionState)) //nolint:forcetypeassert
			return nil
		},
		stateless.FiringImmediate,
	)

	initial := TransactionStateTrying
	if typ == TransactionTypeClientInvite {
		initial = TransactionStateCalling
	}

	fsm.Configure(initial).
		Permit(TransactionStateProceeding, TransactionStateProceeding).
		Permit(TransactionStateCompleted, TransactionStateCompleted).
		Permit(TransactionStateTerminated, TransactionStateTerminated)

	fsm.Configure(TransactionStateProceeding).
		Permit(TransactionStateCompleted, TransactionStateCompleted).
		Permit(TransactionStateTerminated, TransactionStateTerminated)

	fsm.Configure(TransactionStateCompleted).
		Permit(TransactionStateTerminated, TransactionStateTerminated)

	fsm.Configure(TransactionStateTerminated)

	return fsm
}
