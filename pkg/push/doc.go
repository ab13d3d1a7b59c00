// Package push implements the push-subscription lifecycle for the
// Turicanje PWA: platform capability probing, notification permission,
// push subscription creation, and registration with the remote push
// service.
//
// The browser push capability is abstracted behind the Platform
// interface so the state machine is testable without a real browser
// context. The Manager drives the permission -> subscription ->
// registration sequence and exposes the current state to callers;
// operations return a Result value instead of raising errors.
//
// # Basic Usage
//
//	manager, err := push.NewManager(platform, registrar, vapidPublicKey)
//	if err != nil {
//		return err
//	}
//
//	result := manager.Subscribe(ctx, userID, authToken)
//	if !result.OK {
//		// result.Kind and result.Message describe the failure;
//		// manager.State() reflects it as well.
//	}
//
// # State Invariants
//
// Subscribed implies Permission == granted and an active platform
// subscription. Permission == denied implies Subscribed == false, and
// Subscribe never prompts again once permission is permanently denied.
package push
