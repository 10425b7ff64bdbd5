package acordo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/comentario"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/metricas"
	"github.com/CamaraFiscal/api-conciliacao/internal/notificacao"
	"github.com/CamaraFiscal/api-conciliacao/internal/pauta"
	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	"github.com/CamaraFiscal/api-conciliacao/internal/utils"
	dbutil "github.com/CamaraFiscal/api-conciliacao/internal/utils/db"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxParcelas limita o parcelamento de um acordo.
const MaxParcelas = 120

// Notificador recebe os eventos de acordo cumprido após o commit.
type Notificador interface {
	Enviar(ctx context.Context, ev notificacao.Evento) error
}

// Servico é o motor de acordos: pagamentos, baixas, conclusão e vencidas.
type Servico struct {
	DB             *gorm.DB
	Politica       Politica
	DiasTolerancia int
	Notificador    Notificador
	Agora          func() time.Time
	log            *slog.Logger
}

func NewServico(db *gorm.DB, pol Politica, diasTolerancia int, n Notificador) *Servico {
	if pol == nil {
		pol = PoliticaPadrao()
	}
	return &Servico{
		DB:             db,
		Politica:       pol,
		DiasTolerancia: diasTolerancia,
		Notificador:    n,
		Agora:          time.Now,
		log:            utils.Logger("acordo"),
	}
}

// sistema assina as alterações feitas pela rotina de vencidas.
var sistema = &auth.Usuario{ID: "sistema", Nome: "Rotina de vencidas", Papel: auth.PapelAdmin}

// cumprimento é acumulado dentro da transação e publicado após o commit.
type cumprimento struct {
	acordo   *Acordo
	processo *processo.Processo
	origem   Origem
}

func validarCentavos(campo string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return erros.Invalido("O campo '%s' deve ser maior que zero", campo).ComCampo(campo, "deve ser maior que zero")
	}
	if !v.Equal(v.Round(2)) {
		return erros.Invalido("O campo '%s' aceita no máximo duas casas decimais", campo).ComCampo(campo, "máximo de duas casas decimais")
	}
	return nil
}

func exigirAtivo(a *Acordo) error {
	if a.Status != AcordoAtivo {
		return erros.EstadoInvalidoErr("Operação não permitida: acordo está %s", a.Status)
	}
	return nil
}

type NovaInscricao struct {
	NumeroInscricao string
	Valor           decimal.Decimal
}

type NovoDetalhe struct {
	Tipo       string
	Descricao  string
	Valor      decimal.Decimal
	Inscricoes []NovaInscricao
}

type NovoAcordo struct {
	ProcessoID          uint
	ValorFinal          decimal.Decimal
	NumeroParcelas      int
	DataPrimeiraParcela time.Time
	CustasAdvocaticias  *decimal.Decimal
	Observacoes         string
	Detalhes            []NovoDetalhe
}

func (in NovoAcordo) validar() error {
	if in.ProcessoID == 0 {
		return erros.Invalido("O campo 'processoId' é obrigatório").ComCampo("processoId", "obrigatório")
	}
	if err := validarCentavos("valorFinal", in.ValorFinal); err != nil {
		return err
	}
	if in.NumeroParcelas < 1 || in.NumeroParcelas > MaxParcelas {
		return erros.Invalido("Número de parcelas deve estar entre 1 e %d", MaxParcelas).ComCampo("numeroParcelas", "fora do intervalo")
	}
	if minimo := decimal.New(int64(in.NumeroParcelas), -2); in.ValorFinal.LessThan(minimo) {
		return erros.Invalido("Valor final insuficiente para %d parcelas de ao menos R$ 0.01", in.NumeroParcelas).
			ComCampo("numeroParcelas", "excede o valor final em centavos")
	}
	if in.DataPrimeiraParcela.IsZero() {
		return erros.Invalido("O campo 'dataPrimeiraParcela' é obrigatório").ComCampo("dataPrimeiraParcela", "obrigatório")
	}
	if in.CustasAdvocaticias != nil && in.CustasAdvocaticias.IsNegative() {
		return erros.Invalido("Custas advocatícias não podem ser negativas").ComCampo("custasAdvocaticias", "negativo")
	}
	for i, d := range in.Detalhes {
		if strings.TrimSpace(d.Tipo) == "" {
			return erros.Invalido("Detalhe %d sem tipo", i+1).ComCampo("detalhes", "tipo obrigatório")
		}
		if err := validarCentavos("detalhes.valor", d.Valor); err != nil {
			return err
		}
		for _, insc := range d.Inscricoes {
			if strings.TrimSpace(insc.NumeroInscricao) == "" {
				return erros.Invalido("Inscrição sem número no detalhe %d", i+1).ComCampo("inscricoes", "número obrigatório")
			}
		}
	}
	return nil
}

// CriarAcordo firma o acordo de um processo julgado com decisão favorável.
func (s *Servico) CriarAcordo(ctx context.Context, u *auth.Usuario, in NovoAcordo) (*Acordo, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	if err := in.validar(); err != nil {
		return nil, err
	}

	var a *Acordo
	var tipo processo.Tipo
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao criar acordo", func(tx *gorm.DB) error {
		procRepo := processo.NewRepository(tx)
		proc, err := procRepo.FindByIDForUpdate(in.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		tipo = proc.Tipo
		if proc.Status != processo.StatusJulgado {
			return erros.EstadoInvalidoErr("Processo precisa estar JULGADO para firmar acordo (atual: %s)", proc.Status)
		}
		dec, err := pauta.NewRepository(tx).UltimaDecisaoDefinitiva(proc.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erros.EstadoInvalidoErr("Processo não possui decisão definitiva")
		} else if err != nil {
			return err
		}
		if !dec.Tipo.Favoravel() {
			return erros.EstadoInvalidoErr("Decisão %s não permite acordo", dec.Tipo)
		}
		repo := NewRepository(tx)
		ativo, err := repo.ExisteAtivo(proc.ID)
		if err != nil {
			return err
		}
		if ativo {
			return erros.EstadoInvalidoErr("Processo já possui acordo ativo")
		}
		if in.CustasAdvocaticias != nil && proc.Tipo != processo.TipoTransacaoExcepcional {
			return erros.Invalido("Custas advocatícias só se aplicam a transação excepcional").ComCampo("custasAdvocaticias", "não aplicável")
		}
		if len(in.Detalhes) > 0 && proc.Tipo != processo.TipoDacaoPagamento {
			return erros.Invalido("Detalhes só se aplicam a dação em pagamento").ComCampo("detalhes", "não aplicável")
		}

		a = &Acordo{
			ProcessoID:          proc.ID,
			ValorFinal:          in.ValorFinal,
			NumeroParcelas:      in.NumeroParcelas,
			DataPrimeiraParcela: in.DataPrimeiraParcela,
			Status:              AcordoAtivo,
			Observacoes:         in.Observacoes,
		}
		for i, v := range utils.Dividir(in.ValorFinal, in.NumeroParcelas) {
			a.Parcelas = append(a.Parcelas, Parcela{
				Numero:         i + 1,
				Valor:          v,
				Status:         ParcelaPendente,
				DataVencimento: utils.SomarMeses(in.DataPrimeiraParcela, i),
			})
		}
		if proc.Tipo == processo.TipoTransacaoExcepcional {
			custas := decimal.Zero
			if in.CustasAdvocaticias != nil {
				custas = utils.Centavos(*in.CustasAdvocaticias)
			}
			a.Transacao = &AcordoTransacao{CustasAdvocaticias: custas}
		}
		for _, d := range in.Detalhes {
			det := AcordoDetalhe{Tipo: d.Tipo, Descricao: d.Descricao, Valor: d.Valor, Status: DetalhePendente}
			for _, insc := range d.Inscricoes {
				det.Inscricoes = append(det.Inscricoes, AcordoInscricao{
					NumeroInscricao: insc.NumeroInscricao,
					Valor:           insc.Valor,
					Situacao:        InscricaoPendente,
				})
			}
			a.Detalhes = append(a.Detalhes, det)
		}
		if err := repo.Create(a); err != nil {
			return err
		}

		if err := procRepo.UpdateValorNegociado(proc.ID, decimal.NewNullDecimal(in.ValorFinal)); err != nil {
			return err
		}
		if _, err := processo.AplicarStatus(tx, u, proc, processo.Mudanca{
			Para:      processo.StatusAcordoFirmado,
			Evento:    historico.EventoAcordo,
			Titulo:    "Acordo firmado",
			Descricao: fmt.Sprintf("%d parcela(s), valor final %s", a.NumeroParcelas, utils.FormatarReais(a.ValorFinal)),
		}); err != nil {
			return err
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoCriar, "Acordo", a.ID, nil, a)
	})
	if err != nil {
		return nil, err
	}
	metricas.AcordoCriado(string(tipo))
	s.log.InfoContext(ctx, "acordo firmado", "operation", "acordo.criar", "outcome", "success",
		"acordo_id", a.ID, "processo_id", a.ProcessoID)
	return a, nil
}

func (s *Servico) fatos(tx *gorm.DB, a *Acordo, atualizarProcesso bool) (Fatos, error) {
	repo := NewRepository(tx)
	f := Fatos{AtualizarProcesso: atualizarProcesso, CustasDevidas: a.Transacao.CustasDevidas()}
	parcelas, err := repo.Parcelas(a.ID)
	if err != nil {
		return f, err
	}
	f.TotalParcelas = len(parcelas)
	for _, p := range parcelas {
		if p.Status == ParcelaPaga {
			f.ParcelasPagas++
		}
	}
	detalhes, err := repo.Detalhes(a.ID)
	if err != nil {
		return f, err
	}
	f.TotalDetalhes = len(detalhes)
	for _, d := range detalhes {
		if d.Status == DetalheExecutado {
			f.DetalhesExecutados++
		}
	}
	return f, nil
}

// avaliarCumprimento marca o acordo como cumprido quando os fatos permitem.
func (s *Servico) avaliarCumprimento(tx *gorm.DB, u *auth.Usuario, a *Acordo, proc *processo.Processo, o Origem) (*cumprimento, error) {
	f, err := s.fatos(tx, a, false)
	if err != nil {
		return nil, err
	}
	dec := ProximoStatusProcesso(proc.Tipo, f, o, s.Politica)
	if !dec.Cumprido {
		return nil, nil
	}
	return s.marcarCumprido(tx, u, a, proc, dec, o)
}

// marcarCumprido grava o cumprimento e exatamente uma entrada de histórico.
func (s *Servico) marcarCumprido(tx *gorm.DB, u *auth.Usuario, a *Acordo, proc *processo.Processo, dec Decisao, o Origem) (*cumprimento, error) {
	anterior := a.Status
	agora := s.Agora()
	a.Status = AcordoCumprido
	a.DataCumprimento = &agora
	if err := NewRepository(tx).UpdateAcordo(a); err != nil {
		return nil, err
	}

	titulo := "Acordo cumprido"
	descricao := fmt.Sprintf("Acordo %d cumprido (%s)", a.ID, o)
	mudou := false
	if dec.StatusProcesso != "" {
		var err error
		mudou, err = processo.AplicarStatus(tx, u, proc, processo.Mudanca{
			Para:      dec.StatusProcesso,
			Evento:    historico.EventoAcordo,
			Titulo:    titulo,
			Descricao: descricao,
		})
		if err != nil {
			return nil, err
		}
	}
	hist := historico.NewRepository(tx)
	if !mudou {
		if err := hist.Registrar(u, &historico.HistoricoProcesso{
			ProcessoID: proc.ID,
			Tipo:       historico.EventoAcordo,
			Titulo:     titulo,
			Descricao:  descricao,
		}); err != nil {
			return nil, err
		}
	}
	if err := hist.Auditar(u, historico.AcaoAtualizar, "Acordo", a.ID,
		map[string]any{"status": anterior},
		map[string]any{"status": a.Status, "dataCumprimento": agora, "origem": o.String()}); err != nil {
		return nil, err
	}
	return &cumprimento{acordo: a, processo: proc, origem: o}, nil
}

// iniciarCumprimento move o processo para EM_CUMPRIMENTO no primeiro pagamento.
func iniciarCumprimento(tx *gorm.DB, u *auth.Usuario, proc *processo.Processo) error {
	if proc.Status != processo.StatusAcordoFirmado {
		return nil
	}
	_, err := processo.AplicarStatus(tx, u, proc, processo.Mudanca{
		Para:   processo.StatusEmCumprimento,
		Evento: historico.EventoPagamento,
		Titulo: "Cumprimento do acordo iniciado",
	})
	return err
}

// publicar roda após o commit; falhas do webhook são apenas registradas.
func (s *Servico) publicar(ctx context.Context, c *cumprimento) {
	if c == nil {
		return
	}
	metricas.AcordoCumprido(c.origem.String())
	s.log.InfoContext(ctx, "acordo cumprido", "operation", "acordo.cumprir", "outcome", "success",
		"acordo_id", c.acordo.ID, "processo_id", c.processo.ID, "origem", c.origem.String(),
		"request_id", utils.RequestID(ctx))
	if s.Notificador == nil {
		return
	}
	err := s.Notificador.Enviar(ctx, notificacao.Evento{
		Evento:         notificacao.EventoAcordoCumprido,
		AcordoID:       c.acordo.ID,
		ProcessoID:     c.processo.ID,
		NumeroProcesso: c.processo.Numero,
		StatusProcesso: string(c.processo.Status),
		OcorridoEm:     s.Agora(),
	})
	if err != nil {
		s.log.WarnContext(ctx, "falha ao notificar cumprimento", "operation", "acordo.notificar", "outcome", "failure",
			"acordo_id", c.acordo.ID, "error", err.Error())
	}
}

type NovoPagamento struct {
	ParcelaID         uint
	ValorPago         decimal.Decimal
	FormaPagamento    FormaPagamento
	DataPagamento     time.Time
	NumeroComprovante string
	Observacoes       string
}

// ResultadoPagamento é devolvido pelas operações que tocam uma parcela.
type ResultadoPagamento struct {
	Pagamento      *PagamentoParcela `json:"pagamento,omitempty"`
	Parcela        *Parcela          `json:"parcela"`
	SaldoRestante  decimal.Decimal   `json:"saldoRestante"`
	AcordoCumprido bool              `json:"acordoCumprido"`
}

// travarParcela trava o acordo e depois a parcela, na mesma ordem usada
// pelo cancelamento e pelo lote de vencidas.
func travarParcela(repo *Repository, parcelaID uint) (*Acordo, *Parcela, error) {
	acordoID, err := repo.AcordoDaParcela(parcelaID)
	if err != nil {
		return nil, nil, erros.DeBusca(err, "Parcela")
	}
	a, err := repo.FindByIDForUpdate(acordoID)
	if err != nil {
		return nil, nil, erros.DeBusca(err, "Acordo")
	}
	parc, err := repo.FindParcelaForUpdate(parcelaID)
	if err != nil {
		return nil, nil, erros.DeBusca(err, "Parcela")
	}
	return a, parc, nil
}

// RegistrarPagamento lança um pagamento na parcela e propaga o cumprimento.
func (s *Servico) RegistrarPagamento(ctx context.Context, u *auth.Usuario, in NovoPagamento, o Origem) (*ResultadoPagamento, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	in.FormaPagamento = FormaPagamento(strings.ToLower(strings.TrimSpace(string(in.FormaPagamento))))
	if !in.FormaPagamento.Valida() {
		return nil, erros.Invalido("Forma de pagamento inválida: %s", in.FormaPagamento).ComCampo("formaPagamento", "inválida")
	}
	if err := validarCentavos("valorPago", in.ValorPago); err != nil {
		return nil, err
	}
	if in.DataPagamento.IsZero() {
		in.DataPagamento = s.Agora()
	}

	res := &ResultadoPagamento{}
	var cump *cumprimento
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao registrar pagamento", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		a, parc, err := travarParcela(repo, in.ParcelaID)
		if err != nil {
			return err
		}
		if err := exigirAtivo(a); err != nil {
			return err
		}
		if parc.Status == ParcelaCancelada {
			return erros.EstadoInvalidoErr("Parcela cancelada não aceita pagamento")
		}

		pago := TotalPago(parc.Pagamentos)
		restante := parc.Valor.Sub(pago)
		if in.ValorPago.GreaterThan(restante) {
			return erros.Invalido("Valor pago excede o saldo restante da parcela (%s)", utils.FormatarReais(restante)).
				ComCampo("saldoRestante", restante.StringFixed(2))
		}

		pg := &PagamentoParcela{
			ParcelaID:         parc.ID,
			ValorPago:         in.ValorPago,
			DataPagamento:     in.DataPagamento,
			FormaPagamento:    in.FormaPagamento,
			NumeroComprovante: in.NumeroComprovante,
			Observacoes:       in.Observacoes,
			UsuarioID:         u.ID,
		}
		if err := repo.CreatePagamento(pg); err != nil {
			return err
		}
		hist := historico.NewRepository(tx)
		if err := hist.Auditar(u, historico.AcaoCriar, "PagamentoParcela", pg.ID, nil, pg); err != nil {
			return err
		}
		parc.Pagamentos = append(parc.Pagamentos, *pg)
		pago = pago.Add(in.ValorPago)

		// só promove a PAGO; pagamento parcial mantém o status atual
		if pago.GreaterThanOrEqual(parc.Valor) && parc.Status != ParcelaPaga {
			antes := parc.Status
			data := in.DataPagamento
			parc.Status = ParcelaPaga
			parc.DataPagamento = &data
			if err := repo.UpdateParcela(parc); err != nil {
				return err
			}
			if err := hist.Auditar(u, historico.AcaoAtualizar, "Parcela", parc.ID,
				map[string]any{"status": antes}, map[string]any{"status": parc.Status, "dataPagamento": data}); err != nil {
				return err
			}
		}

		proc, err := processo.NewRepository(tx).FindByIDForUpdate(a.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		if err := iniciarCumprimento(tx, u, proc); err != nil {
			return err
		}
		if cump, err = s.avaliarCumprimento(tx, u, a, proc, o); err != nil {
			return err
		}

		res.Pagamento = pg
		res.Parcela = parc
		res.SaldoRestante = parc.Valor.Sub(pago)
		res.AcordoCumprido = cump != nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	metricas.Pagamento(o.String(), string(in.FormaPagamento), in.ValorPago.InexactFloat64())
	s.publicar(ctx, cump)
	return res, nil
}

type AtualizacaoParcela struct {
	DataVencimento time.Time
	DataPagamento  *time.Time
	Status         StatusParcela
}

// AtualizarParcela altera vencimento e status. A baixa manual para PAGO gera
// um pagamento em dinheiro com a diferença que faltar.
func (s *Servico) AtualizarParcela(ctx context.Context, u *auth.Usuario, parcelaID uint, in AtualizacaoParcela) (*ResultadoPagamento, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	in.Status = StatusParcela(strings.ToUpper(strings.TrimSpace(string(in.Status))))
	switch in.Status {
	case ParcelaPendente, ParcelaAtrasada, ParcelaPaga:
	case ParcelaCancelada:
		return nil, erros.Invalido("Parcelas só são canceladas junto com o acordo").ComCampo("status", "não permitido")
	default:
		return nil, erros.Invalido("Status de parcela inválido: %s", in.Status).ComCampo("status", "inválido")
	}
	if in.DataVencimento.IsZero() {
		return nil, erros.Invalido("O campo 'dataVencimento' é obrigatório").ComCampo("dataVencimento", "obrigatório")
	}
	if in.Status == ParcelaPaga && in.DataPagamento == nil {
		return nil, erros.Invalido("Data de pagamento é obrigatória para parcela paga").ComCampo("dataPagamento", "obrigatório")
	}

	res := &ResultadoPagamento{}
	var cump *cumprimento
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao atualizar parcela", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		a, parc, err := travarParcela(repo, parcelaID)
		if err != nil {
			return err
		}
		if err := exigirAtivo(a); err != nil {
			return err
		}
		if parc.Status == ParcelaCancelada {
			return erros.EstadoInvalidoErr("Parcela cancelada não pode ser alterada")
		}
		if parc.Status == ParcelaPaga && in.Status != ParcelaPaga {
			return erros.EstadoInvalidoErr("Parcela paga não pode voltar para %s", in.Status)
		}

		antes := *parc
		antes.Pagamentos = nil
		hist := historico.NewRepository(tx)
		pago := TotalPago(parc.Pagamentos)
		if in.Status == ParcelaPaga && parc.Status != ParcelaPaga {
			if falta := parc.Valor.Sub(pago); falta.IsPositive() {
				pg := &PagamentoParcela{
					ParcelaID:      parc.ID,
					ValorPago:      falta,
					DataPagamento:  *in.DataPagamento,
					FormaPagamento: FormaDinheiro,
					Observacoes:    "Pagamento gerado na baixa manual da parcela",
					UsuarioID:      u.ID,
				}
				if err := repo.CreatePagamento(pg); err != nil {
					return err
				}
				if err := hist.Auditar(u, historico.AcaoCriar, "PagamentoParcela", pg.ID, nil, pg); err != nil {
					return err
				}
				parc.Pagamentos = append(parc.Pagamentos, *pg)
				pago = pago.Add(falta)
				res.Pagamento = pg
			}
		}

		parc.Status = in.Status
		parc.DataVencimento = in.DataVencimento
		if in.Status == ParcelaPaga {
			parc.DataPagamento = in.DataPagamento
		} else {
			parc.DataPagamento = nil
		}
		if err := repo.UpdateParcela(parc); err != nil {
			return err
		}
		depois := *parc
		depois.Pagamentos = nil
		if err := hist.Auditar(u, historico.AcaoAtualizar, "Parcela", parc.ID, antes, depois); err != nil {
			return err
		}

		proc, err := processo.NewRepository(tx).FindByIDForUpdate(a.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		if parc.Status == ParcelaPaga {
			if err := iniciarCumprimento(tx, u, proc); err != nil {
				return err
			}
		}
		if cump, err = s.avaliarCumprimento(tx, u, a, proc, OrigemParcela); err != nil {
			return err
		}

		res.Parcela = parc
		res.SaldoRestante = parc.Valor.Sub(pago)
		res.AcordoCumprido = cump != nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Pagamento != nil {
		metricas.Pagamento(OrigemParcela.String(), string(FormaDinheiro), res.Pagamento.ValorPago.InexactFloat64())
	}
	s.publicar(ctx, cump)
	return res, nil
}

// ConcluirAcordo encerra diretamente acordos de compensação e dação.
func (s *Servico) ConcluirAcordo(ctx context.Context, u *auth.Usuario, acordoID uint, atualizarProcesso bool) (*Acordo, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	var cump *cumprimento
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao concluir acordo", func(tx *gorm.DB) error {
		a, err := NewRepository(tx).FindByIDForUpdate(acordoID)
		if err != nil {
			return erros.DeBusca(err, "Acordo")
		}
		if err := exigirAtivo(a); err != nil {
			return err
		}
		proc, err := processo.NewRepository(tx).FindByIDForUpdate(a.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		dec := ProximoStatusProcesso(proc.Tipo, Fatos{AtualizarProcesso: atualizarProcesso}, OrigemManual, s.Politica)
		if !dec.Cumprido {
			return erros.EstadoInvalidoErr("Acordos de %s só podem ser concluídos pelo pagamento das parcelas", proc.Tipo)
		}
		cump, err = s.marcarCumprido(tx, u, a, proc, dec, OrigemManual)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, cump)
	return s.Buscar(ctx, acordoID)
}

type ResultadoDetalhe struct {
	Detalhe        *AcordoDetalhe `json:"detalhe"`
	AcordoCumprido bool           `json:"acordoCumprido"`
}

// AtualizarDetalhe altera um componente de dação. A primeira execução
// quita as inscrições vinculadas.
func (s *Servico) AtualizarDetalhe(ctx context.Context, u *auth.Usuario, acordoID, detalheID uint, status string, observacoes *string) (*ResultadoDetalhe, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case DetalhePendente, DetalheEmExecucao, DetalheExecutado, DetalheCancelado:
	default:
		return nil, erros.Invalido("Status de detalhe inválido: %s", status).ComCampo("status", "inválido")
	}

	res := &ResultadoDetalhe{}
	var cump *cumprimento
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao atualizar detalhe do acordo", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		a, err := repo.FindByIDForUpdate(acordoID)
		if err != nil {
			return erros.DeBusca(err, "Acordo")
		}
		if err := exigirAtivo(a); err != nil {
			return err
		}
		detalhes, err := repo.Detalhes(acordoID)
		if err != nil {
			return err
		}
		var d *AcordoDetalhe
		for i := range detalhes {
			if detalhes[i].ID == detalheID {
				d = &detalhes[i]
			}
		}
		if d == nil {
			return erros.NaoEncontradoErr("Detalhe do acordo não encontrado")
		}
		if d.Status == DetalheExecutado && status != DetalheExecutado {
			return erros.EstadoInvalidoErr("Detalhe executado não pode voltar para %s", status)
		}

		antes := *d
		if status == DetalheExecutado && d.DataExecucao == nil {
			agora := s.Agora()
			d.DataExecucao = &agora
			if err := repo.QuitarInscricoes(d.ID); err != nil {
				return err
			}
			for i := range d.Inscricoes {
				d.Inscricoes[i].Situacao = InscricaoQuitada
			}
		}
		d.Status = status
		if observacoes != nil {
			d.Observacoes = *observacoes
		}
		if err := repo.UpdateDetalhe(d); err != nil {
			return err
		}
		if err := historico.NewRepository(tx).Auditar(u, historico.AcaoAtualizar, "AcordoDetalhe", d.ID, antes, d); err != nil {
			return err
		}

		proc, err := processo.NewRepository(tx).FindByIDForUpdate(a.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		if cump, err = s.avaliarCumprimento(tx, u, a, proc, OrigemDetalhes); err != nil {
			return err
		}
		res.Detalhe = d
		res.AcordoCumprido = cump != nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, cump)
	return res, nil
}

// RegistrarCustas registra o pagamento das custas advocatícias.
func (s *Servico) RegistrarCustas(ctx context.Context, u *auth.Usuario, acordoID uint, data time.Time) (*Acordo, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	if data.IsZero() {
		data = s.Agora()
	}
	var cump *cumprimento
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao registrar custas", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		a, err := repo.FindByIDForUpdate(acordoID)
		if err != nil {
			return erros.DeBusca(err, "Acordo")
		}
		if err := exigirAtivo(a); err != nil {
			return err
		}
		t := a.Transacao
		if t == nil || !t.CustasAdvocaticias.IsPositive() {
			return erros.EstadoInvalidoErr("Acordo não possui custas advocatícias")
		}
		if t.CustasDataPagamento != nil {
			return erros.EstadoInvalidoErr("Custas já pagas em %s", t.CustasDataPagamento.Format("02/01/2006"))
		}
		t.CustasDataPagamento = &data
		if err := repo.UpdateTransacao(t); err != nil {
			return err
		}
		if err := historico.NewRepository(tx).Auditar(u, historico.AcaoAtualizar, "AcordoTransacao", t.ID,
			map[string]any{"custasDataPagamento": nil}, map[string]any{"custasDataPagamento": data}); err != nil {
			return err
		}
		proc, err := processo.NewRepository(tx).FindByIDForUpdate(a.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		cump, err = s.avaliarCumprimento(tx, u, a, proc, OrigemCustas)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, cump)
	return s.Buscar(ctx, acordoID)
}

// CancelarAcordo cancela o acordo ativo e devolve o processo a JULGADO.
func (s *Servico) CancelarAcordo(ctx context.Context, u *auth.Usuario, acordoID uint, motivo string) (*Acordo, error) {
	if err := auth.Autorizar(u, auth.SomenteAdmin...); err != nil {
		return nil, err
	}
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, erros.Invalido("O motivo do cancelamento é obrigatório").ComCampo("motivo", "obrigatório")
	}
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao cancelar acordo", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		a, err := repo.FindByIDForUpdate(acordoID)
		if err != nil {
			return erros.DeBusca(err, "Acordo")
		}
		if err := exigirAtivo(a); err != nil {
			return err
		}
		parcelas, err := repo.Parcelas(a.ID)
		if err != nil {
			return err
		}
		var abertas []uint
		for _, p := range parcelas {
			if p.Status != ParcelaPaga && p.Status != ParcelaCancelada {
				abertas = append(abertas, p.ID)
			}
		}
		if err := repo.UpdateStatusParcelas(abertas, ParcelaCancelada); err != nil {
			return err
		}
		agora := s.Agora()
		a.Status = AcordoCancelado
		a.DataCancelamento = &agora
		a.MotivoCancelamento = motivo
		if err := repo.UpdateAcordo(a); err != nil {
			return err
		}

		proc, err := processo.NewRepository(tx).FindByIDForUpdate(a.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		mudou, err := processo.AplicarStatus(tx, u, proc, processo.Mudanca{
			Para:      processo.StatusJulgado,
			Evento:    historico.EventoAcordo,
			Titulo:    "Acordo cancelado",
			Descricao: motivo,
		})
		if err != nil {
			return err
		}
		hist := historico.NewRepository(tx)
		if !mudou {
			if err := hist.Registrar(u, &historico.HistoricoProcesso{
				ProcessoID: proc.ID, Tipo: historico.EventoAcordo, Titulo: "Acordo cancelado", Descricao: motivo,
			}); err != nil {
				return err
			}
		}
		if err := comentario.NewRepository(tx).Create(&comentario.Comentario{
			ProcessoID: proc.ID,
			Texto:      fmt.Sprintf("Acordo %d cancelado por %s: %s", a.ID, u.Nome, motivo),
			Sistema:    true,
		}); err != nil {
			return err
		}
		return hist.Auditar(u, historico.AcaoAtualizar, "Acordo", a.ID,
			map[string]any{"status": AcordoAtivo},
			map[string]any{"status": a.Status, "motivo": motivo, "parcelasCanceladas": len(abertas)})
	})
	if err != nil {
		return nil, err
	}
	metricas.AcordoCancelado()
	s.log.InfoContext(ctx, "acordo cancelado", "operation", "acordo.cancelar", "outcome", "success", "acordo_id", acordoID)
	return s.Buscar(ctx, acordoID)
}

func (s *Servico) Buscar(ctx context.Context, id uint) (*Acordo, error) {
	a, err := NewRepository(s.DB.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, erros.DeBusca(err, "Acordo")
	}
	return a, nil
}

func (s *Servico) DoProcesso(ctx context.Context, processoID uint) ([]Acordo, error) {
	list, err := NewRepository(s.DB.WithContext(ctx)).ListByProcesso(processoID)
	if err != nil {
		return nil, erros.InternoErr(err, "erro ao listar acordos")
	}
	return list, nil
}

// ParcelaDetalhe é a parcela com pagamentos e saldo.
type ParcelaDetalhe struct {
	Parcela
	TotalPago     decimal.Decimal `json:"totalPago"`
	SaldoRestante decimal.Decimal `json:"saldoRestante"`
}

func (s *Servico) BuscarParcela(ctx context.Context, id uint) (*ParcelaDetalhe, error) {
	p, err := NewRepository(s.DB.WithContext(ctx)).FindParcela(id)
	if err != nil {
		return nil, erros.DeBusca(err, "Parcela")
	}
	pago := TotalPago(p.Pagamentos)
	return &ParcelaDetalhe{Parcela: *p, TotalPago: pago, SaldoRestante: p.Valor.Sub(pago)}, nil
}
