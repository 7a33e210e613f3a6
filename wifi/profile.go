package wifi

import (
	"bytes"
	"encoding/json"
)

// NetworkProfile is a stored, preferred network entry. It is immutable; use
// Mutable to stage edits before committing a Configuration.
type NetworkProfile struct {
	ssid     []byte
	security Security
}

// NewNetworkProfile copies ssid into a new profile.
func NewNetworkProfile(ssid []byte, security Security) NetworkProfile {
	return NetworkProfile{
		ssid:     append([]byte(nil), ssid...),
		security: security,
	}
}

// SSIDData returns a copy of the raw SSID.
func (p NetworkProfile) SSIDData() []byte {
	return append([]byte(nil), p.ssid...)
}

// SSID returns the printable SSID, see DecodeSSID.
func (p NetworkProfile) SSID() (string, bool) {
	return DecodeSSID(p.ssid)
}

func (p NetworkProfile) Security() Security {
	return p.security
}

// Equal compares SSID bytes and security.
func (p NetworkProfile) Equal(other NetworkProfile) bool {
	return bytes.Equal(p.ssid, other.ssid) && p.security == other.security
}

// Mutable returns an editable copy of p.
func (p NetworkProfile) Mutable() *MutableNetworkProfile {
	return &MutableNetworkProfile{
		SSIDData: p.SSIDData(),
		Security: p.security,
	}
}

type networkProfileJSON struct {
	SSIDData []byte `json:"ssid_data"`
	SSID     string `json:"ssid,omitempty"`
	Security string `json:"security"`
}

func (p NetworkProfile) MarshalJSON() ([]byte, error) {
	ssid, _ := p.SSID()

	return json.Marshal(&networkProfileJSON{
		SSIDData: p.ssid,
		SSID:     ssid,
		Security: p.security.String(),
	})
}

func (p *NetworkProfile) UnmarshalJSON(data []byte) error {
	var v networkProfileJSON

	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}

	if v.SSIDData == nil && v.SSID != "" {
		v.SSIDData = []byte(v.SSID)
	}

	*p = NewNetworkProfile(v.SSIDData, ParseSecurity(v.Security))

	return nil
}

// MutableNetworkProfile is a staged edit of a NetworkProfile.
type MutableNetworkProfile struct {
	SSIDData []byte
	Security Security
}

// Profile freezes the staged values into a NetworkProfile.
func (m *MutableNetworkProfile) Profile() NetworkProfile {
	return NewNetworkProfile(m.SSIDData, m.Security)
}

// EAPProfile holds 802.1X credentials for an enterprise network.
type EAPProfile struct {
	SSID                    string `json:"ssid"`
	UserDefinedName         string `json:"user_defined_name,omitempty"`
	Username                string `json:"username,omitempty"`
	Password                string `json:"password,omitempty"`
	AlwaysPromptForPassword bool   `json:"always_prompt_for_password"`
}

func (p EAPProfile) Equal(other EAPProfile) bool {
	return p == other
}

// Configuration is the persistent configuration of an interface.
type Configuration struct {
	NetworkProfiles                    []NetworkProfile `json:"network_profiles"`
	EAPProfiles                        []EAPProfile     `json:"eap_profiles,omitempty"`
	RequireAdministratorForAssociation bool             `json:"require_admin_association"`
	RequireAdministratorForPower       bool             `json:"require_admin_power"`
	RequireAdministratorForIBSS        bool             `json:"require_admin_ibss"`
	RememberJoinedNetworks             bool             `json:"remember_joined_networks"`
}

// Clone returns a copy that shares no slices with c.
func (c Configuration) Clone() Configuration {
	clone := c
	clone.NetworkProfiles = append([]NetworkProfile(nil), c.NetworkProfiles...)
	clone.EAPProfiles = append([]EAPProfile(nil), c.EAPProfiles...)

	return clone
}

// Equal compares flags and profiles in order.
func (c Configuration) Equal(other Configuration) bool {
	if c.RequireAdministratorForAssociation != other.RequireAdministratorForAssociation ||
		c.RequireAdministratorForPower != other.RequireAdministratorForPower ||
		c.RequireAdministratorForIBSS != other.RequireAdministratorForIBSS ||
		c.RememberJoinedNetworks != other.RememberJoinedNetworks {
		return false
	}

	if len(c.NetworkProfiles) != len(other.NetworkProfiles) || len(c.EAPProfiles) != len(other.EAPProfiles) {
		return false
	}

	for i := range c.NetworkProfiles {
		if !c.NetworkProfiles[i].Equal(other.NetworkProfiles[i]) {
			return false
		}
	}

	for i := range c.EAPProfiles {
		if !c.EAPProfiles[i].Equal(other.EAPProfiles[i]) {
			return false
		}
	}

	return true
}

// Validate rejects profiles with illegal SSIDs and duplicate entries.
func (c Configuration) Validate() error {
	seen := make(map[string]bool)

	for i, profile := range c.NetworkProfiles {
		if !ValidSSID(profile.ssid) {
			return NewError(InvalidParameterError, "network profile %d has an SSID of %d octets", i, len(profile.ssid))
		}

		if profile.security == SecurityUnknown {
			return NewError(InvalidParameterError, "network profile %d has an unknown security type", i)
		}

		key := string(profile.ssid)
		if seen[key] {
			return NewError(InvalidParameterError, "duplicate network profile for SSID %q", profile.ssid)
		}

		seen[key] = true
	}

	for i, profile := range c.EAPProfiles {
		if !ValidSSID([]byte(profile.SSID)) {
			return NewError(InvalidParameterError, "802.1X profile %d has an SSID of %d octets", i, len(profile.SSID))
		}
	}

	return nil
}

// Profile looks up the network profile stored for ssid.
func (c Configuration) Profile(ssid []byte) (NetworkProfile, bool) {
	for _, p := range c.NetworkProfiles {
		if bytes.Equal(p.ssid, ssid) {
			return p, true
		}
	}

	return NetworkProfile{}, false
}

// EAPProfile looks up 802.1X credentials for ssid.
func (c Configuration) EAPProfile(ssid string) (EAPProfile, bool) {
	for _, p := range c.EAPProfiles {
		if p.SSID == ssid {
			return p, true
		}
	}

	return EAPProfile{}, false
}
