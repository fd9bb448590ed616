// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package message

// Utility: assign slice directly if empty, else append
func assignOrAppend(dst, src []byte) []byte {
	if len(dst) == 0 {
		return src
	}
	return append(dst, src...)
}

func (container *IKEPayloadContainer) Reset() {
	*container = nil
}

// Notification
func (container *IKEPayloadContainer) BuildNotification(
	protocolID uint8,
	notifyMessageType uint16,
	spi []byte,
	notificationData []byte,
) {
	notification := new(Notification)
	notification.ProtocolID = protocolID
	notification.NotifyMessageType = notifyMessageType
	notification.SPI = assignOrAppend(nil, spi)
	notification.NotificationData = assignOrAppend(nil, notificationData)
	*container = append(*container, notification)
}

// Certificate
func (container *IKEPayloadContainer) BuildCertificate(certificateEncode uint8, certificateData []byte) {
	certificate := new(Certificate)
	certificate.CertificateEncoding = certificateEncode
	certificate.CertificateData = assignOrAppend(nil, certificateData)
	*container = append(*container, certificate)
}

// Certificate Request
func (container *IKEPayloadContainer) BuildCertificateRequest(certificateEncode uint8, certificationAuthority []byte) {
	certificateRequest := new(CertificateRequest)
	certificateRequest.CertificateEncoding = certificateEncode
	certificateRequest.CertificationAuthority = assignOrAppend(nil, certificationAuthority)
	*container = append(*container, certificateRequest)
}

// Encrypted
func (container *IKEPayloadContainer) BuildEncrypted(nextPayload IKEPayloadType, encryptedData []byte) *Encrypted {
	encrypted := new(Encrypted)
	encrypted.NextPayload = nextPayload
	encrypted.EncryptedData = assignOrAppend(nil, encryptedData)
	*container = append(*container, encrypted)
	return encrypted
}

// Key Exchange
func (container *IKEPayloadContainer) BuildKeyExchange(diffiehellmanGroup uint16, keyExchangeData []byte) {
	keyExchange := new(KeyExchange)
	keyExchange.DiffieHellmanGroup = diffiehellmanGroup
	keyExchange.KeyExchangeData = assignOrAppend(nil, keyExchangeData)
	*container = append(*container, keyExchange)
}

// Identification
func (container *IKEPayloadContainer) BuildIdentificationInitiator(idType uint8, idData []byte) {
	identification := new(IdentificationInitiator)
	identification.IDType = idType
	identification.IDData = assignOrAppend(nil, idData)
	*container = append(*container, identification)
}

func (container *IKEPayloadContainer) BuildIdentificationResponder(idType uint8, idData []byte) {
	identification := new(IdentificationResponder)
	identification.IDType = idType
	identification.IDData = assignOrAppend(nil, idData)
	*container = append(*container, identification)
}

// Authentication
func (container *IKEPayloadContainer) BuildAuthentication(authenticationMethod uint8, authenticationData []byte) {
	authentication := new(Authentication)
	authentication.AuthenticationMethod = authenticationMethod
	authentication.AuthenticationData = assignOrAppend(nil, authenticationData)
	*container = append(*container, authentication)
}

// Nonce
func (container *IKEPayloadContainer) BuildNonce(nonceData []byte) {
	nonce := new(Nonce)
	nonce.NonceData = assignOrAppend(nil, nonceData)
	*container = append(*container, nonce)
}

// Vendor ID
func (container *IKEPayloadContainer) BuildVendorID(vendorIDData []byte) {
	vendorID := new(VendorID)
	vendorID.VendorIDData = assignOrAppend(nil, vendorIDData)
	*container = append(*container, vendorID)
}

// Traffic Selector
func (container *IKEPayloadContainer) BuildTrafficSelectorInitiator() *TrafficSelectorInitiator {
	tsInitiator := new(TrafficSelectorInitiator)
	*container = append(*container, tsInitiator)
	return tsInitiator
}

func (container *IKEPayloadContainer) BuildTrafficSelectorResponder() *TrafficSelectorResponder {
	tsResponder := new(TrafficSelectorResponder)
	*container = append(*container, tsResponder)
	return tsResponder
}

func (container *IndividualTrafficSelectorContainer) Reset() {
	*container = nil
}

func (container *IndividualTrafficSelectorContainer) BuildIndividualTrafficSelector(
	tsType uint8,
	ipProtocolID uint8,
	startPort uint16,
	endPort uint16,
	startAddr []byte,
	endAddr []byte,
) {
	ts := new(IndividualTrafficSelector)
	ts.TSType = tsType
	ts.IPProtocolID = ipProtocolID
	ts.StartPort = startPort
	ts.EndPort = endPort
	ts.StartAddress = assignOrAppend(nil, startAddr)
	ts.EndAddress = assignOrAppend(nil, endAddr)
	*container = append(*container, ts)
}

// Security Association
func (container *IKEPayloadContainer) BuildSecurityAssociation() *SecurityAssociation {
	sa := new(SecurityAssociation)
	*container = append(*container, sa)
	return sa
}

func (container *ProposalContainer) Reset() {
	*container = nil
}

func (container *ProposalContainer) BuildProposal(proposalNumber uint8, protocolID uint8, spi []byte) *Proposal {
	proposal := new(Proposal)
	proposal.ProposalNumber = proposalNumber
	proposal.ProtocolID = protocolID
	proposal.SPI = assignOrAppend(nil, spi)
	*container = append(*container, proposal)
	return proposal
}

// Delete
func (container *IKEPayloadContainer) BuildDeletePayload(protocolID uint8, spiSize uint8, spis [][]byte) {
	deletePayload := new(Delete)
	deletePayload.ProtocolID = protocolID
	deletePayload.SPISize = spiSize
	deletePayload.SPIs = spis
	*container = append(*container, deletePayload)
}

func (container *TransformContainer) Reset() {
	*container = nil
}

func (container *TransformContainer) BuildTransform(
	transformType uint8,
	transformID uint16,
	attributeType *uint16,
	attributeValue *uint16,
	variableLengthAttributeValue []byte,
) {
	transform := new(Transform)
	transform.TransformType = transformType
	transform.TransformID = transformID
	if attributeType != nil {
		transform.AttributePresent = true
		transform.AttributeType = *attributeType
		if attributeValue != nil {
			transform.AttributeFormat = AttributeFormatUseTV
			transform.AttributeValue = *attributeValue
		} else if len(variableLengthAttributeValue) != 0 {
			transform.AttributeFormat = AttributeFormatUseTLV
			transform.VariableLengthAttributeValue = assignOrAppend(nil, variableLengthAttributeValue)
		} else {
			return
		}
	} else {
		transform.AttributePresent = false
	}
	*container = append(*container, transform)
}
