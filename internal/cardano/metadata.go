package cardano

import "strconv"

// EscrowMetadataLabel is the auxiliary-data label marking custodial funds as
// owed to a chat that has not linked a wallet yet. The label and payload shape
// are part of the wire contract with external wallet software.
const EscrowMetadataLabel uint64 = 674

const escrowPayloadKey = "msg"

// EscrowMetadata builds the aux data tagging a payment for later claim:
// {674: {"msg": [chatID]}}.
func EscrowMetadata(chatID string) AuxData {
	return AuxData{
		EscrowMetadataLabel: map[string]interface{}{
			escrowPayloadKey: []interface{}{chatID},
		},
	}
}

// MetadataClaimsChat reports whether the queried metadata of a transaction
// carries an escrow tag for the given chat.
func MetadataClaimsChat(entries []TxMetadata, chatID string) bool {
	label := strconv.FormatUint(EscrowMetadataLabel, 10)
	for _, entry := range entries {
		if entry.Label != label {
			continue
		}
		msg, ok := entry.JSON[escrowPayloadKey].([]interface{})
		if !ok {
			continue
		}
		for _, item := range msg {
			if s, ok := item.(string); ok && s == chatID {
				return true
			}
		}
	}
	return false
}
