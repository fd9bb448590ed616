// SPDX-FileCopyrightText: 2025 ikewire project
//
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ikewire/ikewire/logger"
)

type IKEMessage struct {
	*IKEHeader
	Payloads IKEPayloadContainer
}

func NewMessage(
	iSPI, rSPI uint64, exchgType uint8,
	response, initiator bool, mId uint32,
	payloads IKEPayloadContainer,
) *IKEMessage {
	ikeMessage := &IKEMessage{
		IKEHeader: NewHeader(iSPI, rSPI, exchgType,
			response, initiator, mId, NoNext, nil),
		Payloads: payloads,
	}
	return ikeMessage
}

func (ikeMessage *IKEMessage) Encode() ([]byte, error) {
	logger.IKELog.Debugln("encoding IKE message")
	if len(ikeMessage.Payloads) > 0 {
		ikeMessage.IKEHeader.NextPayload = ikeMessage.Payloads[0].Type()
	} else {
		ikeMessage.IKEHeader.NextPayload = NoNext
	}

	var err error
	ikeMessage.IKEHeader.PayloadBytes, err = ikeMessage.Payloads.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode payload failed: %w", err)
	}
	return ikeMessage.IKEHeader.Marshal()
}

func (ikeMessage *IKEMessage) Decode(rawData []byte) error {
	// IKE message packet format this implementation referenced is
	// defined in RFC 7296, Section 3.1
	logger.IKELog.Debugln("decoding IKE message")
	var err error
	ikeMessage.IKEHeader, err = ParseHeader(rawData)
	if err != nil {
		return fmt.Errorf("Decode(): %w", err)
	}

	return ikeMessage.DecodePayload(ikeMessage.PayloadBytes)
}

func (ikeMessage *IKEMessage) DecodePayload(rawData []byte) error {
	err := ikeMessage.Payloads.Decode(ikeMessage.NextPayload, rawData)
	if err != nil {
		return fmt.Errorf("decode payload failed: %w", err)
	}

	return nil
}

type IKEPayloadContainer []IKEPayload

func (container *IKEPayloadContainer) Encode() ([]byte, error) {
	logger.IKELog.Debugln("encoding IKE payloads")

	ikeMessagePayloadData := make([]byte, 0)

	for index, payload := range *container {
		payloadData := make([]byte, 4)     // IKE payload general header
		if (index + 1) < len(*container) { // if it has next payload
			payloadData[0] = uint8((*container)[index+1].Type())
		} else {
			if payload.Type() == TypeSK {
				payloadData[0] = byte(payload.(*Encrypted).NextPayload)
			} else {
				payloadData[0] = byte(NoNext)
			}
		}
		if unsupported, ok := payload.(*UnsupportedPayload); ok && unsupported.Critical {
			payloadData[1] |= 0x80
		}

		data, err := payload.marshal()
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}

		payloadData = append(payloadData, data...)
		payloadDataLen := len(payloadData)
		if payloadDataLen > math.MaxUint16 {
			return nil, fmt.Errorf("payload data length exceeds uint16 limit: %d", payloadDataLen)
		}
		binary.BigEndian.PutUint16(payloadData[2:4], uint16(payloadDataLen))

		ikeMessagePayloadData = append(ikeMessagePayloadData, payloadData...)
	}

	return ikeMessagePayloadData, nil
}

// Decode walks the payload chain starting from nextPayload until the
// no-next-payload sentinel. Recognized payloads accumulate in wire order.
// Unrecognized payloads are dropped when non-critical; when critical their
// type codes are collected and reported together after the scan, as
// required by RFC 7296, Section 2.5. Bytes remaining after the chain ends
// are a syntax error.
func (container *IKEPayloadContainer) Decode(nextPayload IKEPayloadType, rawData []byte) error {
	logger.IKELog.Debugln("decoding IKE payloads")

	var unsupportedCritical []IKEPayloadType

	for nextPayload != NoNext {
		if len(rawData) < 4 {
			return syntaxErrorf("no sufficient bytes to decode next payload header")
		}
		payloadLength := binary.BigEndian.Uint16(rawData[2:4])
		if payloadLength < 4 {
			// A declared length below the generic header size would make
			// the body length negative.
			return syntaxErrorf("illegal payload length %d < header length 4", payloadLength)
		}
		if len(rawData) < int(payloadLength) {
			return syntaxErrorf("payload length %d exceeds remaining %d bytes", payloadLength, len(rawData))
		}

		criticalBit := (rawData[1] & 0x80) >> 7

		var payload IKEPayload

		switch nextPayload {
		case TypeSA:
			payload = new(SecurityAssociation)
		case TypeKE:
			payload = new(KeyExchange)
		case TypeIDi:
			payload = new(IdentificationInitiator)
		case TypeIDr:
			payload = new(IdentificationResponder)
		case TypeCERT:
			payload = new(Certificate)
		case TypeCERTreq:
			payload = new(CertificateRequest)
		case TypeAUTH:
			payload = new(Authentication)
		case TypeNiNr:
			payload = new(Nonce)
		case TypeN:
			payload = new(Notification)
		case TypeD:
			payload = new(Delete)
		case TypeV:
			payload = new(VendorID)
		case TypeTSi:
			payload = new(TrafficSelectorInitiator)
		case TypeTSr:
			payload = new(TrafficSelectorResponder)
		case TypeSK:
			// The SK payload is always the last of the outer chain; its
			// first-byte field names the first payload inside the envelope,
			// not a successor in this chain.
			encryptedPayload := new(Encrypted)
			encryptedPayload.NextPayload = IKEPayloadType(rawData[0])
			if err := encryptedPayload.unmarshal(rawData[4:payloadLength]); err != nil {
				return fmt.Errorf("unmarshal payload type %d: %w", nextPayload, err)
			}
			*container = append(*container, encryptedPayload)
			nextPayload = NoNext
			rawData = rawData[payloadLength:]
			continue
		default:
			// Body bytes of unrecognized payloads are not retained.
			if criticalBit != 0 {
				unsupportedCritical = append(unsupportedCritical, nextPayload)
			} else {
				logger.IKELog.Debugf("skip unsupported non-critical payload type %d", nextPayload)
			}
			nextPayload = IKEPayloadType(rawData[0])
			rawData = rawData[payloadLength:]
			continue
		}

		if err := payload.unmarshal(rawData[4:payloadLength]); err != nil {
			return fmt.Errorf("unmarshal payload type %d: %w", nextPayload, err)
		}

		*container = append(*container, payload)

		nextPayload = IKEPayloadType(rawData[0])
		rawData = rawData[payloadLength:]
	}

	if len(unsupportedCritical) > 0 {
		return &UnsupportedCriticalPayloadError{PayloadTypes: unsupportedCritical}
	}
	if len(rawData) > 0 {
		return syntaxErrorf("unexpected %d trailing bytes after last payload", len(rawData))
	}

	return nil
}

type IKEPayload interface {
	// Type specifies the IKE payload types
	Type() IKEPayloadType

	// Called by Encode() or Decode()
	marshal() ([]byte, error)
	unmarshal(rawData []byte) error
}

// Definition of Security Association

var _ IKEPayload = &SecurityAssociation{}

type SecurityAssociation struct {
	Proposals ProposalContainer
}

type ProposalContainer []*Proposal

type Proposal struct {
	ProposalNumber          uint8
	ProtocolID              uint8
	SPI                     []byte
	EncryptionAlgorithm     TransformContainer
	PseudorandomFunction    TransformContainer
	IntegrityAlgorithm      TransformContainer
	DiffieHellmanGroup      TransformContainer
	ExtendedSequenceNumbers TransformContainer
}

type TransformContainer []*Transform

type Transform struct {
	TransformType                uint8
	TransformID                  uint16
	AttributePresent             bool
	AttributeFormat              uint8
	AttributeType                uint16
	AttributeValue               uint16
	VariableLengthAttributeValue []byte
}

func (securityAssociation *SecurityAssociation) Type() IKEPayloadType { return TypeSA }

func (securityAssociation *SecurityAssociation) marshal() ([]byte, error) {
	securityAssociationData := make([]byte, 0)

	for proposalIndex, proposal := range securityAssociation.Proposals {
		proposalData := make([]byte, 8)

		if (proposalIndex + 1) < len(securityAssociation.Proposals) {
			proposalData[0] = 2
		} else {
			proposalData[0] = 0
		}

		proposalData[4] = proposal.ProposalNumber
		proposalData[5] = proposal.ProtocolID

		numberofSPI := len(proposal.SPI)
		if numberofSPI > math.MaxUint8 {
			return nil, fmt.Errorf("proposal: too many SPI: %d", numberofSPI)
		}
		proposalData[6] = uint8(numberofSPI)
		if len(proposal.SPI) > 0 {
			proposalData = append(proposalData, proposal.SPI...)
		}

		// combine all transforms
		var transformList []*Transform
		transformList = append(transformList, proposal.EncryptionAlgorithm...)
		transformList = append(transformList, proposal.PseudorandomFunction...)
		transformList = append(transformList, proposal.IntegrityAlgorithm...)
		transformList = append(transformList, proposal.DiffieHellmanGroup...)
		transformList = append(transformList, proposal.ExtendedSequenceNumbers...)

		if len(transformList) == 0 {
			return nil, errors.New("one proposal has no any transform")
		}

		transformListCount := len(transformList)
		if transformListCount > math.MaxUint8 {
			return nil, fmt.Errorf("too many transform: %d", transformListCount)
		}
		proposalData[7] = uint8(transformListCount)

		proposalTransformData := make([]byte, 0)

		for transformIndex, transform := range transformList {
			transformData := make([]byte, 8)

			if (transformIndex + 1) < len(transformList) {
				transformData[0] = 3
			} else {
				transformData[0] = 0
			}

			transformData[4] = transform.TransformType
			binary.BigEndian.PutUint16(transformData[6:8], transform.TransformID)

			if transform.AttributePresent {
				attributeData := make([]byte, 4)

				attributeFormatAndType := ((uint16(transform.AttributeFormat) & 0x1) << 15) | transform.AttributeType
				binary.BigEndian.PutUint16(attributeData[0:2], attributeFormatAndType)

				if transform.AttributeFormat == AttributeFormatUseTLV {
					if len(transform.VariableLengthAttributeValue) == 0 {
						return nil, errors.New("attribute of one transform not specified")
					}
					variableLen := len(transform.VariableLengthAttributeValue)
					if variableLen > math.MaxUint16 {
						return nil, fmt.Errorf("attribute value length exceeds uint16 limit: %d", variableLen)
					}
					binary.BigEndian.PutUint16(attributeData[2:4], uint16(variableLen))
					attributeData = append(attributeData, transform.VariableLengthAttributeValue...)
				} else {
					binary.BigEndian.PutUint16(attributeData[2:4], transform.AttributeValue)
				}

				transformData = append(transformData, attributeData...)
			}
			transformDataLen := len(transformData)
			if transformDataLen > math.MaxUint16 {
				return nil, fmt.Errorf("transform data length exceeds uint16 limit: %d", transformDataLen)
			}
			binary.BigEndian.PutUint16(transformData[2:4], uint16(transformDataLen))

			proposalTransformData = append(proposalTransformData, transformData...)
		}

		proposalData = append(proposalData, proposalTransformData...)
		proposalDataLen := len(proposalData)
		if proposalDataLen > math.MaxUint16 {
			return nil, fmt.Errorf("proposal data length exceeds uint16 limit: %d", proposalDataLen)
		}
		binary.BigEndian.PutUint16(proposalData[2:4], uint16(proposalDataLen))

		securityAssociationData = append(securityAssociationData, proposalData...)
	}

	return securityAssociationData, nil
}

func (securityAssociation *SecurityAssociation) unmarshal(rawData []byte) error {
	for len(rawData) > 0 {
		logger.IKELog.Debugln("unmarshal 1 proposal")
		if len(rawData) < 8 {
			return syntaxErrorf("no sufficient bytes to decode next proposal")
		}
		proposalLength := binary.BigEndian.Uint16(rawData[2:4])
		if proposalLength < 8 {
			return syntaxErrorf("illegal proposal length %d < header length 8", proposalLength)
		}
		if len(rawData) < int(proposalLength) {
			return syntaxErrorf("proposal length %d exceeds remaining %d bytes", proposalLength, len(rawData))
		}

		proposal := new(Proposal)

		proposal.ProposalNumber = rawData[4]
		proposal.ProtocolID = rawData[5]

		spiSize := int(rawData[6])
		if 8+spiSize > int(proposalLength) {
			return syntaxErrorf("no sufficient bytes for unmarshalling SPI of proposal")
		}
		if spiSize > 0 {
			proposal.SPI = append(proposal.SPI, rawData[8:8+spiSize]...)
		}

		transformData := rawData[8+spiSize : proposalLength]

		for len(transformData) > 0 {
			logger.IKELog.Debugln("unmarshal 1 transform")
			if len(transformData) < 8 {
				return syntaxErrorf("no sufficient bytes to decode next transform")
			}
			transformLength := binary.BigEndian.Uint16(transformData[2:4])
			if transformLength < 8 {
				return syntaxErrorf("illegal transform length %d < header length 8", transformLength)
			}
			if len(transformData) < int(transformLength) {
				return syntaxErrorf("transform length %d exceeds remaining %d bytes", transformLength, len(transformData))
			}

			transform := new(Transform)

			transform.TransformType = transformData[4]
			transform.TransformID = binary.BigEndian.Uint16(transformData[6:8])
			if transformLength > 8 {
				if transformLength < 12 {
					return syntaxErrorf("illegal transform length %d for a transform carrying an attribute", transformLength)
				}
				transform.AttributePresent = true
				transform.AttributeFormat = (transformData[8] & 0x80) >> 7
				transform.AttributeType = binary.BigEndian.Uint16(transformData[8:10]) & 0x7fff

				if transform.AttributeFormat == AttributeFormatUseTLV {
					attributeLength := binary.BigEndian.Uint16(transformData[10:12])
					if 12+int(attributeLength) != int(transformLength) {
						return syntaxErrorf("illegal attribute length %d not satisfies the transform length %d",
							attributeLength, transformLength)
					}
					transform.VariableLengthAttributeValue = append(transform.VariableLengthAttributeValue, transformData[12:12+attributeLength]...)
				} else {
					transform.AttributeValue = binary.BigEndian.Uint16(transformData[10:12])
				}
			}

			switch transform.TransformType {
			case TypeEncryptionAlgorithm:
				proposal.EncryptionAlgorithm = append(proposal.EncryptionAlgorithm, transform)
			case TypePseudorandomFunction:
				proposal.PseudorandomFunction = append(proposal.PseudorandomFunction, transform)
			case TypeIntegrityAlgorithm:
				proposal.IntegrityAlgorithm = append(proposal.IntegrityAlgorithm, transform)
			case TypeDiffieHellmanGroup:
				proposal.DiffieHellmanGroup = append(proposal.DiffieHellmanGroup, transform)
			case TypeExtendedSequenceNumbers:
				proposal.ExtendedSequenceNumbers = append(proposal.ExtendedSequenceNumbers, transform)
			}

			transformData = transformData[transformLength:]
		}

		securityAssociation.Proposals = append(securityAssociation.Proposals, proposal)

		rawData = rawData[proposalLength:]
	}

	return nil
}

// Definition of Key Exchange

var _ IKEPayload = &KeyExchange{}

type KeyExchange struct {
	DiffieHellmanGroup uint16
	KeyExchangeData    []byte
}

func (keyExchange *KeyExchange) Type() IKEPayloadType { return TypeKE }

func (keyExchange *KeyExchange) marshal() ([]byte, error) {
	keyExchangeData := make([]byte, 4)

	binary.BigEndian.PutUint16(keyExchangeData[0:2], keyExchange.DiffieHellmanGroup)
	keyExchangeData = append(keyExchangeData, keyExchange.KeyExchangeData...)

	return keyExchangeData, nil
}

func (keyExchange *KeyExchange) unmarshal(rawData []byte) error {
	if len(rawData) <= 4 {
		return syntaxErrorf("no sufficient bytes to decode key exchange data")
	}

	keyExchange.DiffieHellmanGroup = binary.BigEndian.Uint16(rawData[0:2])
	keyExchange.KeyExchangeData = append(keyExchange.KeyExchangeData, rawData[4:]...)

	return nil
}

// Definition of Identification - Initiator

var _ IKEPayload = &IdentificationInitiator{}

type IdentificationInitiator struct {
	IDType uint8
	IDData []byte
}

func (identification *IdentificationInitiator) Type() IKEPayloadType { return TypeIDi }

func (identification *IdentificationInitiator) marshal() ([]byte, error) {
	identificationData := make([]byte, 4)

	identificationData[0] = identification.IDType
	identificationData = append(identificationData, identification.IDData...)

	return identificationData, nil
}

func (identification *IdentificationInitiator) unmarshal(rawData []byte) error {
	if len(rawData) <= 4 {
		return syntaxErrorf("no sufficient bytes to decode identification")
	}

	identification.IDType = rawData[0]
	identification.IDData = append(identification.IDData, rawData[4:]...)

	return nil
}

// Definition of Identification - Responder

var _ IKEPayload = &IdentificationResponder{}

type IdentificationResponder struct {
	IDType uint8
	IDData []byte
}

func (identification *IdentificationResponder) Type() IKEPayloadType { return TypeIDr }

func (identification *IdentificationResponder) marshal() ([]byte, error) {
	identificationData := make([]byte, 4)

	identificationData[0] = identification.IDType
	identificationData = append(identificationData, identification.IDData...)

	return identificationData, nil
}

func (identification *IdentificationResponder) unmarshal(rawData []byte) error {
	if len(rawData) <= 4 {
		return syntaxErrorf("no sufficient bytes to decode identification")
	}

	identification.IDType = rawData[0]
	identification.IDData = append(identification.IDData, rawData[4:]...)

	return nil
}

// Definition of Certificate

var _ IKEPayload = &Certificate{}

type Certificate struct {
	CertificateEncoding uint8
	CertificateData     []byte
}

func (certificate *Certificate) Type() IKEPayloadType { return TypeCERT }

func (certificate *Certificate) marshal() ([]byte, error) {
	certificateData := make([]byte, 1)

	certificateData[0] = certificate.CertificateEncoding
	certificateData = append(certificateData, certificate.CertificateData...)

	return certificateData, nil
}

func (certificate *Certificate) unmarshal(rawData []byte) error {
	if len(rawData) <= 1 {
		return syntaxErrorf("no sufficient bytes to decode certificate")
	}

	certificate.CertificateEncoding = rawData[0]
	certificate.CertificateData = append(certificate.CertificateData, rawData[1:]...)

	return nil
}

// Definition of Certificate Request

var _ IKEPayload = &CertificateRequest{}

type CertificateRequest struct {
	CertificateEncoding    uint8
	CertificationAuthority []byte
}

func (certificateRequest *CertificateRequest) Type() IKEPayloadType { return TypeCERTreq }

func (certificateRequest *CertificateRequest) marshal() ([]byte, error) {
	certificateRequestData := make([]byte, 1)

	certificateRequestData[0] = certificateRequest.CertificateEncoding
	certificateRequestData = append(certificateRequestData, certificateRequest.CertificationAuthority...)

	return certificateRequestData, nil
}

func (certificateRequest *CertificateRequest) unmarshal(rawData []byte) error {
	if len(rawData) < 1 {
		return syntaxErrorf("no sufficient bytes to decode certificate request")
	}

	certificateRequest.CertificateEncoding = rawData[0]
	certificateRequest.CertificationAuthority = append(certificateRequest.CertificationAuthority, rawData[1:]...)

	return nil
}

// Definition of Authentication

var _ IKEPayload = &Authentication{}

type Authentication struct {
	AuthenticationMethod uint8
	AuthenticationData   []byte
}

func (authentication *Authentication) Type() IKEPayloadType { return TypeAUTH }

func (authentication *Authentication) marshal() ([]byte, error) {
	authenticationData := make([]byte, 4)

	authenticationData[0] = authentication.AuthenticationMethod
	authenticationData = append(authenticationData, authentication.AuthenticationData...)

	return authenticationData, nil
}

func (authentication *Authentication) unmarshal(rawData []byte) error {
	if len(rawData) <= 4 {
		return syntaxErrorf("no sufficient bytes to decode authentication")
	}

	authentication.AuthenticationMethod = rawData[0]
	authentication.AuthenticationData = append(authentication.AuthenticationData, rawData[4:]...)

	return nil
}

// Definition of Nonce

var _ IKEPayload = &Nonce{}

type Nonce struct {
	NonceData []byte
}

func (nonce *Nonce) Type() IKEPayloadType { return TypeNiNr }

func (nonce *Nonce) marshal() ([]byte, error) {
	nonceData := make([]byte, 0)
	nonceData = append(nonceData, nonce.NonceData...)

	return nonceData, nil
}

func (nonce *Nonce) unmarshal(rawData []byte) error {
	nonce.NonceData = append(nonce.NonceData, rawData...)
	return nil
}

// Definition of Notification

var _ IKEPayload = &Notification{}

type Notification struct {
	ProtocolID        uint8
	NotifyMessageType uint16
	SPI               []byte
	NotificationData  []byte
}

func (notification *Notification) Type() IKEPayloadType { return TypeN }

func (notification *Notification) marshal() ([]byte, error) {
	notificationData := make([]byte, 4)

	notificationData[0] = notification.ProtocolID
	numberofSPI := len(notification.SPI)
	if numberofSPI > math.MaxUint8 {
		return nil, fmt.Errorf("notification: SPI size exceeds uint8 limit: %d", numberofSPI)
	}
	notificationData[1] = uint8(numberofSPI)
	binary.BigEndian.PutUint16(notificationData[2:4], notification.NotifyMessageType)

	notificationData = append(notificationData, notification.SPI...)
	notificationData = append(notificationData, notification.NotificationData...)

	return notificationData, nil
}

func (notification *Notification) unmarshal(rawData []byte) error {
	if len(rawData) < 4 {
		return syntaxErrorf("no sufficient bytes to decode notification")
	}
	spiSize := int(rawData[1])
	if len(rawData) < 4+spiSize {
		return syntaxErrorf("no sufficient bytes to get SPI according to the length specified in header")
	}

	notification.ProtocolID = rawData[0]
	notification.NotifyMessageType = binary.BigEndian.Uint16(rawData[2:4])

	notification.SPI = append(notification.SPI, rawData[4:4+spiSize]...)
	notification.NotificationData = append(notification.NotificationData, rawData[4+spiSize:]...)

	return nil
}

// Definition of Delete

var _ IKEPayload = &Delete{}

type Delete struct {
	ProtocolID uint8
	SPISize    uint8
	SPIs       [][]byte
}

func (del *Delete) Type() IKEPayloadType { return TypeD }

func (del *Delete) marshal() ([]byte, error) {
	numberOfSPI := len(del.SPIs)
	if numberOfSPI > math.MaxUint16 {
		return nil, fmt.Errorf("delete: too many SPI: %d", numberOfSPI)
	}
	for _, spi := range del.SPIs {
		if len(spi) != int(del.SPISize) {
			return nil, fmt.Errorf("delete: SPI length %d not match SPI size %d", len(spi), del.SPISize)
		}
	}

	deleteData := make([]byte, 4)

	deleteData[0] = del.ProtocolID
	deleteData[1] = del.SPISize
	binary.BigEndian.PutUint16(deleteData[2:4], uint16(numberOfSPI))

	for _, spi := range del.SPIs {
		deleteData = append(deleteData, spi...)
	}

	return deleteData, nil
}

func (del *Delete) unmarshal(rawData []byte) error {
	if len(rawData) < 4 {
		return syntaxErrorf("no sufficient bytes to decode delete")
	}
	spiSize := rawData[0+1]
	numberOfSPI := binary.BigEndian.Uint16(rawData[2:4])
	if len(rawData) != 4+int(spiSize)*int(numberOfSPI) {
		return syntaxErrorf("number of SPI not match the length of data")
	}

	del.ProtocolID = rawData[0]
	del.SPISize = spiSize

	rawData = rawData[4:]
	for i := 0; i < int(numberOfSPI); i++ {
		spi := make([]byte, spiSize)
		copy(spi, rawData[:spiSize])
		del.SPIs = append(del.SPIs, spi)
		rawData = rawData[spiSize:]
	}

	return nil
}

// Definition of Vendor ID

var _ IKEPayload = &VendorID{}

type VendorID struct {
	VendorIDData []byte
}

func (vendorID *VendorID) Type() IKEPayloadType { return TypeV }

func (vendorID *VendorID) marshal() ([]byte, error) {
	return vendorID.VendorIDData, nil
}

func (vendorID *VendorID) unmarshal(rawData []byte) error {
	vendorID.VendorIDData = append(vendorID.VendorIDData, rawData...)
	return nil
}

// Definition of Traffic Selector - Initiator

var _ IKEPayload = &TrafficSelectorInitiator{}

type TrafficSelectorInitiator struct {
	TrafficSelectors IndividualTrafficSelectorContainer
}

type IndividualTrafficSelectorContainer []*IndividualTrafficSelector

type IndividualTrafficSelector struct {
	TSType       uint8
	IPProtocolID uint8
	StartPort    uint16
	EndPort      uint16
	StartAddress []byte
	EndAddress   []byte
}

func (trafficSelector *TrafficSelectorInitiator) Type() IKEPayloadType { return TypeTSi }

func (trafficSelector *TrafficSelectorInitiator) marshal() ([]byte, error) {
	return marshalTrafficSelectors(trafficSelector.TrafficSelectors)
}

func (trafficSelector *TrafficSelectorInitiator) unmarshal(rawData []byte) error {
	selectors, err := unmarshalTrafficSelectors(rawData)
	if err != nil {
		return err
	}
	trafficSelector.TrafficSelectors = selectors
	return nil
}

// Definition of Traffic Selector - Responder

var _ IKEPayload = &TrafficSelectorResponder{}

type TrafficSelectorResponder struct {
	TrafficSelectors IndividualTrafficSelectorContainer
}

func (trafficSelector *TrafficSelectorResponder) Type() IKEPayloadType { return TypeTSr }

func (trafficSelector *TrafficSelectorResponder) marshal() ([]byte, error) {
	return marshalTrafficSelectors(trafficSelector.TrafficSelectors)
}

func (trafficSelector *TrafficSelectorResponder) unmarshal(rawData []byte) error {
	selectors, err := unmarshalTrafficSelectors(rawData)
	if err != nil {
		return err
	}
	trafficSelector.TrafficSelectors = selectors
	return nil
}

func marshalTrafficSelectors(selectors IndividualTrafficSelectorContainer) ([]byte, error) {
	if len(selectors) == 0 {
		return nil, errors.New("contains no traffic selector for marshalling message")
	}

	trafficSelectorData := make([]byte, 4)
	selectorCount := len(selectors)
	if selectorCount > math.MaxUint8 {
		return nil, fmt.Errorf("too many traffic selectors: %d", selectorCount)
	}
	trafficSelectorData[0] = uint8(selectorCount)

	for _, individualTrafficSelector := range selectors {
		var addrLen int
		switch individualTrafficSelector.TSType {
		case TS_IPV4_ADDR_RANGE:
			addrLen = 4
		case TS_IPV6_ADDR_RANGE:
			addrLen = 16
		default:
			return nil, fmt.Errorf("unsupported traffic selector type %d", individualTrafficSelector.TSType)
		}
		if len(individualTrafficSelector.StartAddress) != addrLen {
			return nil, errors.New("start address length is not correct")
		}
		if len(individualTrafficSelector.EndAddress) != addrLen {
			return nil, errors.New("end address length is not correct")
		}

		individualTrafficSelectorData := make([]byte, 8)

		individualTrafficSelectorData[0] = individualTrafficSelector.TSType
		individualTrafficSelectorData[1] = individualTrafficSelector.IPProtocolID
		binary.BigEndian.PutUint16(individualTrafficSelectorData[2:4], uint16(8+2*addrLen))
		binary.BigEndian.PutUint16(individualTrafficSelectorData[4:6], individualTrafficSelector.StartPort)
		binary.BigEndian.PutUint16(individualTrafficSelectorData[6:8], individualTrafficSelector.EndPort)

		individualTrafficSelectorData = append(individualTrafficSelectorData, individualTrafficSelector.StartAddress...)
		individualTrafficSelectorData = append(individualTrafficSelectorData, individualTrafficSelector.EndAddress...)

		trafficSelectorData = append(trafficSelectorData, individualTrafficSelectorData...)
	}

	return trafficSelectorData, nil
}

func unmarshalTrafficSelectors(rawData []byte) (IndividualTrafficSelectorContainer, error) {
	if len(rawData) < 4 {
		return nil, syntaxErrorf("no sufficient bytes to get number of traffic selectors")
	}

	numberOfTS := rawData[0]
	rawData = rawData[4:]

	var container IndividualTrafficSelectorContainer

	for ; numberOfTS > 0; numberOfTS-- {
		if len(rawData) < 4 {
			return nil, syntaxErrorf("no sufficient bytes to decode next traffic selector")
		}

		var addrLen int
		switch rawData[0] {
		case TS_IPV4_ADDR_RANGE:
			addrLen = 4
		case TS_IPV6_ADDR_RANGE:
			addrLen = 16
		default:
			return nil, syntaxErrorf("unsupported traffic selector type %d", rawData[0])
		}

		selectorLength := binary.BigEndian.Uint16(rawData[2:4])
		if int(selectorLength) != 8+2*addrLen {
			return nil, syntaxErrorf("illegal traffic selector length %d for type %d", selectorLength, rawData[0])
		}
		if len(rawData) < int(selectorLength) {
			return nil, syntaxErrorf("traffic selector length %d exceeds remaining %d bytes", selectorLength, len(rawData))
		}

		individualTrafficSelector := &IndividualTrafficSelector{}

		individualTrafficSelector.TSType = rawData[0]
		individualTrafficSelector.IPProtocolID = rawData[1]
		individualTrafficSelector.StartPort = binary.BigEndian.Uint16(rawData[4:6])
		individualTrafficSelector.EndPort = binary.BigEndian.Uint16(rawData[6:8])

		individualTrafficSelector.StartAddress = append(individualTrafficSelector.StartAddress, rawData[8:8+addrLen]...)
		individualTrafficSelector.EndAddress = append(individualTrafficSelector.EndAddress, rawData[8+addrLen:8+2*addrLen]...)

		container = append(container, individualTrafficSelector)

		rawData = rawData[selectorLength:]
	}

	if len(rawData) > 0 {
		return nil, syntaxErrorf("unexpected %d trailing bytes after traffic selectors", len(rawData))
	}

	return container, nil
}

// Definition of Encrypted Payload

var _ IKEPayload = &Encrypted{}

type Encrypted struct {
	NextPayload   IKEPayloadType
	EncryptedData []byte
}

func (encrypted *Encrypted) Type() IKEPayloadType { return TypeSK }

func (encrypted *Encrypted) marshal() ([]byte, error) {
	if len(encrypted.EncryptedData) == 0 {
		return nil, errors.New("encrypted data is empty")
	}

	return encrypted.EncryptedData, nil
}

func (encrypted *Encrypted) unmarshal(rawData []byte) error {
	encrypted.EncryptedData = append(encrypted.EncryptedData, rawData...)
	return nil
}

// Definition of the unsupported-payload fallback. Decode never emits it
// (unknown non-critical payloads are dropped, unknown critical ones fail
// the decode); it exists so tests and tooling can construct payload chains
// carrying arbitrary type codes.

var _ IKEPayload = &UnsupportedPayload{}

type UnsupportedPayload struct {
	PayloadType IKEPayloadType
	Critical    bool
}

func (unsupported *UnsupportedPayload) Type() IKEPayloadType { return unsupported.PayloadType }

func (unsupported *UnsupportedPayload) marshal() ([]byte, error) {
	return nil, nil
}

func (unsupported *UnsupportedPayload) unmarshal(rawData []byte) error {
	return nil
}
