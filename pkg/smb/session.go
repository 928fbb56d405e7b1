package smb

import (
	"context"
	"errors"
	"fmt"

	"github.com/croxford/smbls/pkg/auth"
	"github.com/croxford/smbls/pkg/smb/types"
)

// Session owns one SMB2 connection's request/response cycle: the monotonic
// message id counter, the session id once the server grants one, and the
// authentication state.
type Session struct {
	transport  *Transport
	negotiated *NegotiateResult

	sessionID uint64
	messageID uint64

	authenticated bool
	guest         bool
}

// NewSession wraps a connected transport. Negotiate must run before any
// other exchange.
func NewSession(transport *Transport) *Session {
	return &Session{transport: transport}
}

// Guest reports whether the server downgraded the login to a guest session.
func (s *Session) Guest() bool { return s.guest }

// Authenticated reports whether a SESSION_SETUP exchange has completed.
func (s *Session) Authenticated() bool { return s.authenticated }

// Dialect returns the negotiated dialect, or zero before Negotiate.
func (s *Session) Dialect() types.Dialect {
	if s.negotiated == nil {
		return 0
	}
	return s.negotiated.Dialect
}

// exchange sends one framed request and returns the matching response.
// The message id is consumed here and only here: exactly one increment per
// request, regardless of outcome. Interim STATUS_PENDING frames from async
// processing are discarded until the real response arrives.
func (s *Session) exchange(cmd types.Command, treeID uint32, body []byte) (*types.Header, []byte, error) {
	header := types.NewHeader(cmd, s.messageID)
	s.messageID++
	header.SessionID = s.sessionID
	header.TreeID = treeID

	msg := append(header.Marshal(), body...)
	if err := s.transport.Send(msg); err != nil {
		return nil, nil, err
	}

	for {
		frame, err := s.transport.Recv()
		if err != nil {
			return nil, nil, err
		}
		var resp types.Header
		if err := resp.Unmarshal(frame); err != nil {
			return nil, nil, err
		}
		if resp.IsInterim() {
			log.Debugf("async pending for message %d, waiting\n", resp.MessageID)
			continue
		}
		if resp.MessageID != header.MessageID {
			return nil, nil, fmt.Errorf("response message id %d does not match request %d",
				resp.MessageID, header.MessageID)
		}
		return &resp, frame[types.HeaderSize:], nil
	}
}

// request is exchange plus a status gate: anything other than want becomes
// a StatusError.
func (s *Session) request(cmd types.Command, treeID uint32, body []byte, want types.NTStatus) (*types.Header, []byte, error) {
	header, payload, err := s.exchange(cmd, treeID, body)
	if err != nil {
		return nil, nil, err
	}
	if header.Status != want {
		return nil, nil, newStatusError(header.Status, want)
	}
	return header, payload, nil
}

// Authenticate runs SESSION_SETUP with the given credentials. Kerberos
// providers carry their own pre-built SPNEGO token; everything else goes
// through the NTLMSSP two-round exchange.
func (s *Session) Authenticate(ctx context.Context, creds auth.Credentials) error {
	if s.negotiated == nil {
		return errors.New("authenticate before negotiate")
	}
	var err error
	if kp, ok := creds.(auth.KerberosProvider); ok {
		err = s.authenticateKerberos(ctx, kp)
	} else {
		err = s.authenticateNTLM(ctx, creds)
	}
	if err != nil {
		return err
	}
	s.authenticated = true
	if s.guest {
		log.Infoln("server granted a guest session")
	}
	return nil
}

func (s *Session) authenticateKerberos(ctx context.Context, kp auth.KerberosProvider) error {
	spn := "cifs/" + s.transport.RemoteHost()
	token, err := kp.GetSPNEGOToken(spn)
	if err != nil {
		return fmt.Errorf("kerberos token for %s: %w", spn, err)
	}

	req := types.NewSessionSetupRequest(token)
	header, payload, err := s.exchange(types.CommandSessionSetup, 0, req.Marshal())
	if err != nil {
		return fmt.Errorf("session setup: %w", err)
	}
	if header.Status != types.StatusSuccess && header.Status != types.StatusMoreProcessingReq {
		return newStatusError(header.Status, types.StatusSuccess)
	}
	s.sessionID = header.SessionID

	var resp types.SessionSetupResponse
	if err := resp.Unmarshal(payload); err != nil {
		return fmt.Errorf("session setup: %w", err)
	}

	// Mutual auth leaves the server one token short; an empty continuation
	// completes the exchange.
	if header.Status == types.StatusMoreProcessingReq {
		cont := types.NewSessionSetupRequest(nil)
		_, payload, err = s.request(types.CommandSessionSetup, 0, cont.Marshal(), types.StatusSuccess)
		if err != nil {
			return fmt.Errorf("session setup continuation: %w", err)
		}
		if err := resp.Unmarshal(payload); err != nil {
			return fmt.Errorf("session setup continuation: %w", err)
		}
	}

	s.guest = resp.IsGuest()
	return nil
}

func (s *Session) authenticateNTLM(ctx context.Context, creds auth.Credentials) error {
	type1 := auth.NewNegotiateMessage().Marshal()
	wrapped, err := wrapTokenInit(type1)
	if err != nil {
		return fmt.Errorf("spnego init token: %w", err)
	}

	req := types.NewSessionSetupRequest(wrapped)
	header, payload, err := s.request(types.CommandSessionSetup, 0, req.Marshal(),
		types.StatusMoreProcessingReq)
	if err != nil {
		return fmt.Errorf("session setup: %w", err)
	}

	// The session id the server assigns on the challenge leg must ride on
	// every subsequent request.
	s.sessionID = header.SessionID

	var setupResp types.SessionSetupResponse
	if err := setupResp.Unmarshal(payload); err != nil {
		return fmt.Errorf("session setup: %w", err)
	}
	type2 := unwrapToken(setupResp.SecurityBuffer)
	if type2 == nil {
		return errors.New("session setup: no NTLMSSP challenge in response")
	}
	challenge, err := auth.ParseChallengeMessage(type2)
	if err != nil {
		return fmt.Errorf("session setup: %w", err)
	}

	opts := auth.AuthenticateOptions{
		Domain:      creds.Domain(),
		Username:    creds.Username(),
		Workstation: "WORKSTATION",
	}
	switch c := creds.(type) {
	case *auth.PasswordCredentials:
		opts.Password = c.Password()
	case *auth.HashCredentials:
		opts.NTLMv2Hash = auth.NTLMv2Hash(c.NTHash(), c.Username(), c.Domain())
	case auth.AnonymousCredentials, *auth.AnonymousCredentials:
		opts.Username = ""
		opts.Domain = ""
	}

	type3 := auth.NewAuthenticateMessage(challenge, opts)
	wrapped, err = wrapTokenResp(type3.Marshal())
	if err != nil {
		return fmt.Errorf("spnego response token: %w", err)
	}

	req2 := types.NewSessionSetupRequest(wrapped)
	_, payload, err = s.request(types.CommandSessionSetup, 0, req2.Marshal(), types.StatusSuccess)
	if err != nil {
		return fmt.Errorf("session setup: %w", err)
	}
	if err := setupResp.Unmarshal(payload); err != nil {
		return fmt.Errorf("session setup: %w", err)
	}
	s.guest = setupResp.IsGuest()
	return nil
}

// Logoff tears down the authenticated session. The connection itself stays
// usable until the transport closes.
func (s *Session) Logoff(ctx context.Context) error {
	if !s.authenticated {
		return nil
	}
	var req types.LogoffRequest
	_, _, err := s.request(types.CommandLogoff, 0, req.Marshal(), types.StatusSuccess)
	if err != nil {
		return fmt.Errorf("logoff: %w", err)
	}
	s.authenticated = false
	s.sessionID = 0
	return nil
}
