package pauta

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CamaraFiscal/api-conciliacao/internal/auth"
	"github.com/CamaraFiscal/api-conciliacao/internal/erros"
	"github.com/CamaraFiscal/api-conciliacao/internal/historico"
	"github.com/CamaraFiscal/api-conciliacao/internal/processo"
	dbutil "github.com/CamaraFiscal/api-conciliacao/internal/utils/db"
	"gorm.io/gorm"
)

// Servico concentra as regras de pauta e julgamento.
type Servico struct {
	DB    *gorm.DB
	Agora func() time.Time
}

func NewServico(db *gorm.DB) *Servico {
	return &Servico{DB: db, Agora: time.Now}
}

type NovaPauta struct {
	Numero     string
	DataSessao time.Time
	Descricao  string
}

func (s *Servico) CriarPauta(ctx context.Context, u *auth.Usuario, in NovaPauta) (*Pauta, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	in.Numero = strings.TrimSpace(in.Numero)
	if in.Numero == "" {
		return nil, erros.Invalido("O campo 'numero' é obrigatório").ComCampo("numero", "obrigatório")
	}
	if in.DataSessao.IsZero() {
		return nil, erros.Invalido("O campo 'dataSessao' é obrigatório").ComCampo("dataSessao", "obrigatório")
	}

	p := &Pauta{Numero: in.Numero, DataSessao: in.DataSessao, Descricao: in.Descricao, Status: StatusAberta}
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao criar pauta", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.FindByNumero(p.Numero); err == nil {
			return erros.Invalido("Já existe pauta com este número").ComCampo("numero", "duplicado")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := repo.Create(p); err != nil {
			return err
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoCriar, "Pauta", p.ID, nil, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Inclusao de processo em pauta.
type Inclusao struct {
	ProcessoID uint
	RelatorID  string
	RevisorID  string
}

// IncluirProcesso acrescenta o processo ao fim da pauta e o coloca EM_PAUTA.
func (s *Servico) IncluirProcesso(ctx context.Context, u *auth.Usuario, pautaID uint, in Inclusao) (*ProcessoPauta, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	var item *ProcessoPauta
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao incluir processo na pauta", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		p, err := repo.FindByIDForUpdate(pautaID)
		if err != nil {
			return erros.DeBusca(err, "Pauta")
		}
		if p.Status != StatusAberta {
			return erros.EstadoInvalidoErr("Pauta %s não está aberta", p.Numero)
		}
		proc, err := processo.NewRepository(tx).FindByIDForUpdate(in.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		if outra, err := repo.PautaAbertaDoProcesso(proc.ID); err == nil {
			return erros.EstadoInvalidoErr("Processo %s já está na pauta %s", proc.Numero, outra.Numero)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		ordem, err := repo.MaxOrdem(p.ID)
		if err != nil {
			return err
		}
		item = &ProcessoPauta{
			PautaID:    p.ID,
			ProcessoID: proc.ID,
			Ordem:      ordem + 1,
			RelatorID:  in.RelatorID,
			RevisorID:  in.RevisorID,
		}
		if _, err := processo.AplicarStatus(tx, u, proc, processo.Mudanca{
			Para:      processo.StatusEmPauta,
			Evento:    historico.EventoPauta,
			Titulo:    fmt.Sprintf("Incluído na pauta %s", p.Numero),
			Descricao: fmt.Sprintf("Ordem %d", item.Ordem),
		}); err != nil {
			return err
		}
		if err := repo.CreateItem(item); err != nil {
			return err
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoCriar, "ProcessoPauta", item.ID, nil, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoverProcesso retira o processo da pauta, compacta a ordem e o devolve a EM_ANALISE.
func (s *Servico) RemoverProcesso(ctx context.Context, u *auth.Usuario, pautaID, processoID uint) error {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return err
	}
	return dbutil.EmTransacao(ctx, s.DB, "erro ao remover processo da pauta", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		p, err := repo.FindByIDForUpdate(pautaID)
		if err != nil {
			return erros.DeBusca(err, "Pauta")
		}
		if p.Status != StatusAberta {
			return erros.EstadoInvalidoErr("Pauta %s não está aberta", p.Numero)
		}
		item, err := repo.FindItem(pautaID, processoID)
		if err != nil {
			return erros.DeBusca(err, "Processo na pauta")
		}
		if err := repo.DeleteItem(item.ID); err != nil {
			return err
		}
		if err := compactar(repo, pautaID); err != nil {
			return err
		}
		proc, err := processo.NewRepository(tx).FindByIDForUpdate(processoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}
		if proc.Status == processo.StatusEmPauta {
			if _, err := processo.AplicarStatus(tx, u, proc, processo.Mudanca{
				Para:   processo.StatusEmAnalise,
				Evento: historico.EventoPauta,
				Titulo: fmt.Sprintf("Retirado da pauta %s", p.Numero),
			}); err != nil {
				return err
			}
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoExcluir, "ProcessoPauta", item.ID, item, nil)
	})
}

func compactar(repo *Repository, pautaID uint) error {
	itens, err := repo.Itens(pautaID)
	if err != nil {
		return err
	}
	for i, it := range itens {
		if it.Ordem == i+1 {
			continue
		}
		if err := repo.UpdateOrdem(it.ID, i+1); err != nil {
			return err
		}
	}
	return nil
}

// Reordenar aplica a nova ordem; processoIDs deve conter exatamente os processos da pauta.
func (s *Servico) Reordenar(ctx context.Context, u *auth.Usuario, pautaID uint, processoIDs []uint) error {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return err
	}
	return dbutil.EmTransacao(ctx, s.DB, "erro ao reordenar pauta", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		p, err := repo.FindByIDForUpdate(pautaID)
		if err != nil {
			return erros.DeBusca(err, "Pauta")
		}
		if p.Status != StatusAberta {
			return erros.EstadoInvalidoErr("Pauta %s não está aberta", p.Numero)
		}
		itens, err := repo.Itens(pautaID)
		if err != nil {
			return err
		}
		porProcesso := make(map[uint]ProcessoPauta, len(itens))
		for _, it := range itens {
			porProcesso[it.ProcessoID] = it
		}
		if len(processoIDs) != len(itens) {
			return erros.Invalido("A nova ordem deve conter todos os %d processos da pauta", len(itens)).ComCampo("processoIds", "incompleto")
		}
		vistos := map[uint]bool{}
		for _, id := range processoIDs {
			if _, ok := porProcesso[id]; !ok || vistos[id] {
				return erros.Invalido("Processo %d inválido ou repetido na nova ordem", id).ComCampo("processoIds", "inválido")
			}
			vistos[id] = true
		}
		for i, id := range processoIDs {
			if err := repo.UpdateOrdem(porProcesso[id].ID, i+1); err != nil {
				return err
			}
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoAtualizar, "Pauta", p.ID, nil, map[string]any{"ordem": processoIDs})
	})
}

type NovaSessao struct {
	Presidente   string
	Conselheiros []string
}

// AbrirSessao inicia o julgamento da pauta.
func (s *Servico) AbrirSessao(ctx context.Context, u *auth.Usuario, pautaID uint, in NovaSessao) (*SessaoJulgamento, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	var sessao *SessaoJulgamento
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao abrir sessão", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		p, err := repo.FindByIDForUpdate(pautaID)
		if err != nil {
			return erros.DeBusca(err, "Pauta")
		}
		if p.Status != StatusAberta {
			return erros.EstadoInvalidoErr("Pauta %s não está aberta", p.Numero)
		}
		itens, err := repo.Itens(pautaID)
		if err != nil {
			return err
		}
		if len(itens) == 0 {
			return erros.EstadoInvalidoErr("Pauta %s não possui processos", p.Numero)
		}
		sessao = &SessaoJulgamento{
			PautaID:      p.ID,
			Presidente:   in.Presidente,
			Conselheiros: strings.Join(in.Conselheiros, ", "),
			DataInicio:   s.Agora(),
		}
		if err := repo.CreateSessao(sessao); err != nil {
			return err
		}
		if err := repo.UpdateStatus(p.ID, StatusEmJulgamento); err != nil {
			return err
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoCriar, "SessaoJulgamento", sessao.ID, nil, sessao)
	})
	if err != nil {
		return nil, err
	}
	return sessao, nil
}

type NovoVoto struct {
	ConselheiroID   string
	ConselheiroNome string
	Sentido         string
	Fundamentacao   string
}

type NovaDecisao struct {
	ProcessoID    uint
	Tipo          TipoDecisao
	Fundamentacao string
	Votos         []NovoVoto
}

// RegistrarDecisao grava a decisão da sessão e aplica o status ao processo.
func (s *Servico) RegistrarDecisao(ctx context.Context, u *auth.Usuario, sessaoID uint, in NovaDecisao) (*Decisao, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	in.Tipo = TipoDecisao(strings.ToUpper(strings.TrimSpace(string(in.Tipo))))
	destino, ok := in.Tipo.StatusProcesso()
	if !ok {
		return nil, erros.Invalido("Tipo de decisão inválido: %s", in.Tipo).ComCampo("tipo", "inválido")
	}
	votos := make([]Voto, 0, len(in.Votos))
	for i, v := range in.Votos {
		switch v.Sentido {
		case VotoFavoravel, VotoContrario, VotoAbstencao:
		default:
			return nil, erros.Invalido("Sentido do voto %d inválido", i+1).ComCampo("votos", "sentido inválido")
		}
		if strings.TrimSpace(v.ConselheiroID) == "" {
			return nil, erros.Invalido("Voto %d sem conselheiro", i+1).ComCampo("votos", "conselheiro obrigatório")
		}
		votos = append(votos, Voto{ConselheiroID: v.ConselheiroID, ConselheiroNome: v.ConselheiroNome, Sentido: v.Sentido, Fundamentacao: v.Fundamentacao})
	}

	var d *Decisao
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao registrar decisão", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		sessao, err := repo.FindSessaoForUpdate(sessaoID)
		if err != nil {
			return erros.DeBusca(err, "Sessão de julgamento")
		}
		if !sessao.Aberta() {
			return erros.EstadoInvalidoErr("Sessão de julgamento encerrada")
		}
		if _, err := repo.FindItem(sessao.PautaID, in.ProcessoID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return erros.EstadoInvalidoErr("Processo não consta da pauta desta sessão")
			}
			return err
		}
		if _, err := repo.DecisaoNaSessao(sessao.ID, in.ProcessoID); err == nil {
			return erros.EstadoInvalidoErr("Processo já foi decidido nesta sessão")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		proc, err := processo.NewRepository(tx).FindByIDForUpdate(in.ProcessoID)
		if err != nil {
			return erros.DeBusca(err, "Processo")
		}

		d = &Decisao{
			ProcessoID:    proc.ID,
			SessaoID:      sessao.ID,
			Tipo:          in.Tipo,
			Definitiva:    in.Tipo.Definitiva(),
			Fundamentacao: in.Fundamentacao,
			DataDecisao:   s.Agora(),
			Votos:         votos,
		}
		if err := repo.CreateDecisao(d); err != nil {
			return err
		}
		if _, err := processo.AplicarStatus(tx, u, proc, processo.Mudanca{
			Para:      destino,
			Evento:    historico.EventoDecisao,
			Titulo:    fmt.Sprintf("Decisão: %s", d.Tipo),
			Descricao: d.Fundamentacao,
		}); err != nil {
			return err
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoCriar, "Decisao", d.ID, nil, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// EncerrarSessao fecha a sessão, marca a pauta como julgada e devolve a
// EM_ANALISE os processos que ficaram sem decisão.
func (s *Servico) EncerrarSessao(ctx context.Context, u *auth.Usuario, sessaoID uint, ata string) (*SessaoJulgamento, error) {
	if err := auth.Autorizar(u, auth.Escrita...); err != nil {
		return nil, err
	}
	var sessao *SessaoJulgamento
	err := dbutil.EmTransacao(ctx, s.DB, "erro ao encerrar sessão", func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		var err error
		sessao, err = repo.FindSessaoForUpdate(sessaoID)
		if err != nil {
			return erros.DeBusca(err, "Sessão de julgamento")
		}
		if !sessao.Aberta() {
			return erros.EstadoInvalidoErr("Sessão de julgamento já encerrada")
		}
		antes := *sessao
		fim := s.Agora()
		sessao.DataFim = &fim
		sessao.Ata = ata
		if err := repo.UpdateSessao(sessao); err != nil {
			return err
		}
		if err := repo.UpdateStatus(sessao.PautaID, StatusJulgada); err != nil {
			return err
		}

		itens, err := repo.Itens(sessao.PautaID)
		if err != nil {
			return err
		}
		procRepo := processo.NewRepository(tx)
		for _, it := range itens {
			proc, err := procRepo.FindByIDForUpdate(it.ProcessoID)
			if err != nil {
				return erros.DeBusca(err, "Processo")
			}
			if proc.Status != processo.StatusEmPauta {
				continue
			}
			if _, err := processo.AplicarStatus(tx, u, proc, processo.Mudanca{
				Para:   processo.StatusEmAnalise,
				Evento: historico.EventoPauta,
				Titulo: "Sessão encerrada sem decisão",
			}); err != nil {
				return err
			}
		}
		return historico.NewRepository(tx).Auditar(u, historico.AcaoAtualizar, "SessaoJulgamento", sessao.ID, antes, sessao)
	})
	if err != nil {
		return nil, err
	}
	return sessao, nil
}
