package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"horizonBank/models"
	"horizonBank/utils"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// SwiftService формирует референсы и пакеты платежных поручений
// для имитируемой сети SWIFT
type SwiftService struct {
	outboxDir string
}

// NewSwiftService создает новый экземпляр SwiftService
func NewSwiftService(outboxDir string) *SwiftService {
	return &SwiftService{outboxDir: outboxDir}
}

// GenerateReference генерирует референс подтверждения для транзакции
func (s *SwiftService) GenerateReference() string {
	return fmt.Sprintf("SWIFT-%d-%s", time.Now().UnixMilli(), utils.GenerateReferenceSuffix(9))
}

// BuildBatchDocument формирует XML-документ пакета кредитовых переводов
func (s *SwiftService) BuildBatchDocument(transactions []models.Transaction, submittedBy string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Document")
	root.CreateAttr("xmlns", "urn:iso:std:iso:20022:tech:xsd:pacs.008.001.08")

	transfer := root.CreateElement("FIToFICstmrCdtTrf")

	// Заголовок пакета
	header := transfer.CreateElement("GrpHdr")
	header.CreateElement("MsgId").SetText(uuid.NewString())
	header.CreateElement("CreDtTm").SetText(time.Now().UTC().Format(time.RFC3339))
	header.CreateElement("NbOfTxs").SetText(fmt.Sprintf("%d", len(transactions)))
	header.CreateElement("InstgAgt").SetText("HORIZON BANK")
	header.CreateElement("InitgPtyId").SetText(submittedBy)

	// Отдельный блок на каждый перевод
	for _, tx := range transactions {
		info := transfer.CreateElement("CdtTrfTxInf")

		pmtID := info.CreateElement("PmtId")
		pmtID.CreateElement("EndToEndId").SetText(tx.ID)
		pmtID.CreateElement("TxRef").SetText(tx.SwiftReference)

		amount := info.CreateElement("IntrBkSttlmAmt")
		amount.CreateAttr("Ccy", tx.Currency)
		amount.SetText(tx.Amount.StringFixed(2))

		debtor := info.CreateElement("Dbtr")
		debtor.CreateElement("Nm").SetText(tx.SenderName)
		debtor.CreateElement("Acct").SetText(tx.SenderAccount)

		creditor := info.CreateElement("Cdtr")
		creditor.CreateElement("Nm").SetText(tx.RecipientName)
		creditor.CreateElement("Acct").SetText(tx.RecipientAccount)

		info.CreateElement("CdtrAgtBIC").SetText(tx.SwiftCode)
	}

	doc.Indent(2)
	return doc
}

// ExportBatch записывает пакет в исходящую директорию и возвращает путь к файлу
func (s *SwiftService) ExportBatch(transactions []models.Transaction, submittedBy string) (string, error) {
	if err := os.MkdirAll(s.outboxDir, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания исходящей директории: %v", err)
	}

	doc := s.BuildBatchDocument(transactions, submittedBy)

	path := filepath.Join(s.outboxDir, fmt.Sprintf("swift-batch-%d.xml", time.Now().UnixMilli()))
	if err := doc.WriteToFile(path); err != nil {
		return "", fmt.Errorf("ошибка записи пакета: %v", err)
	}

	return path, nil
}
